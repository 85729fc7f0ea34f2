package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/domsift"
)

var _ domsift.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor records each extraction with input and output sizes,
// so runs over many pages show which documents shrank to nothing.
type LoggingExtractor struct {
	name   string
	next   domsift.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. The name identifies
// the wrapped extractor in log output, e.g. "trafilatura" or "blockmodel".
func NewLoggingExtractor(name string, next domsift.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{name: name, next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(html string) (*domsift.ExtractResult, error) {
	start := time.Now()
	result, err := e.next.Extract(html)
	out := 0
	if result != nil {
		out = len(result.ContentHTML)
	}
	e.logger.Info("extract",
		"extractor", e.name,
		"bytes_in", len(html),
		"bytes_out", out,
		"duration", time.Since(start),
		"err", err,
	)
	return result, err
}
