package chunker

import (
	"strings"

	"semsearch/internal/domain"
)

// SentenceDelimiters end a sentence.
var SentenceDelimiters = []rune{'.', '!', '?'}

// SentenceChunker groups sentences into windows that overlap by a fixed
// number of sentences.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	var sentences []string
	for _, s := range SplitDelimited(document.Content, SentenceDelimiters) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	i := 0
	for {
		end := min(i+c.sentencesPerChunk, len(sentences))
		text := strings.Join(sentences[i:end], " ")
		chunks = append(chunks, newChunk(document.Filename, len(chunks), text))
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks, nil
}
