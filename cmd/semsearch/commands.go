package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"semsearch/internal/domain"
	"semsearch/internal/server"
	"semsearch/internal/service"
	"semsearch/internal/tui"
	"semsearch/internal/vectorstore/memory"
	"semsearch/internal/watch"
)

var (
	chunkStrategy    string
	ingestCollection string
	tuiCollection    string
	watchCollection  string
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Print the chunks a file is split into",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		ch, err := buildChunker(cfg, chunkStrategy)
		if err != nil {
			return err
		}
		chunks, err := ch.Chunk(domain.Document{Filename: args[0], Content: string(data)})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range chunks {
			fmt.Fprintf(out, "--- chunk %d (%d bytes) ---\n%s\n", c.Index, len(c.Text), strings.TrimRight(c.Text, "\n"))
		}
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file> [file...]",
	Short: "Chunk, embed and store documents in a collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		idx, err := buildIndex(cfg, ingestCollection, emb, nil)
		if err != nil {
			return err
		}
		if err := idx.Init(ctx); err != nil {
			return err
		}
		summary, err := idx.Ingest(ctx, args)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the collections over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		indexes := make(map[string]server.Index, len(cfg.Collections))
		for _, name := range cfg.Collections {
			idx, err := buildIndex(cfg, name, emb, nil)
			if err != nil {
				return err
			}
			if err := idx.Init(ctx); err != nil {
				return err
			}
			indexes[name] = idx
		}
		srv := server.New(server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}, indexes)
		fmt.Fprintf(cmd.OutOrStdout(), "Server starting on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
		return srv.Run(ctx)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui <file> [file...]",
	Short: "Index files in memory and search them interactively",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("tui needs an interactive terminal")
		}
		ctx := cmd.Context()
		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		idx, err := buildIndex(cfg, tuiCollection, emb, memory.NewStorage())
		if err != nil {
			return err
		}
		if err := idx.Init(ctx); err != nil {
			return err
		}
		summary, err := idx.Ingest(ctx, args)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		_, err = tea.NewProgram(tui.New(idx, tuiCollection, summary)).Run()
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest a directory and keep the collection in sync with it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		emb, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		idx, err := buildIndex(cfg, watchCollection, emb, nil)
		if err != nil {
			return err
		}
		if err := idx.Init(ctx); err != nil {
			return err
		}
		w := watch.New(args[0], service.Indexable)
		// watch before seeding so edits made during the initial pass are not lost
		changes, err := w.Watch(ctx)
		if err != nil {
			return err
		}
		n, err := w.Seed(ctx, idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files, watching %s for changes (collection %s)\n", n, args[0], watchCollection)
		watch.Sync(ctx, changes, idx)
		return nil
	},
}

func init() {
	chunkCmd.Flags().StringVarP(&chunkStrategy, "strategy", "s", "", "Chunking strategy: semantic, sections or sentence (defaults to config)")
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "blogs", "Collection to ingest into")
	watchCmd.Flags().StringVarP(&watchCollection, "collection", "c", "blogs", "Collection to keep in sync")
	tuiCmd.Flags().StringVarP(&tuiCollection, "collection", "c", "local", "Name shown for the in-memory collection")

	rootCmd.AddCommand(chunkCmd, ingestCmd, serveCmd, tuiCmd, watchCmd)
}
