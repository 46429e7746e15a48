package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semsearch/internal/config"
	"semsearch/internal/logger"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "semsearch",
	Short: "Chunk, embed and search markdown documents",
	Long: `semsearch splits documents into clause or markdown-section chunks, embeds
them and stores them in a vector store (in memory or Qdrant) for similarity search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		var err error
		if cfgPath == "" {
			var path string
			cfg, path, err = config.LoadDefault()
			logger.Debug("using config %s", path)
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/semsearch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
