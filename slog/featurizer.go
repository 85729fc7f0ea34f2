package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/domsift"
)

var _ domsift.Featurizer = (*LoggingFeaturizer)(nil)

// LoggingFeaturizer records each featurized document with its block count.
type LoggingFeaturizer struct {
	next   domsift.Featurizer
	logger *slog.Logger
}

// NewLoggingFeaturizer creates a new LoggingFeaturizer.
func NewLoggingFeaturizer(next domsift.Featurizer, logger *slog.Logger) *LoggingFeaturizer {
	return &LoggingFeaturizer{next: next, logger: logger}
}

// Featurize delegates to the wrapped featurizer and logs the outcome.
func (f *LoggingFeaturizer) Featurize(doc *domsift.Document) (*domsift.FeatureTable, error) {
	start := time.Now()
	table, err := f.next.Featurize(doc)
	blocks := 0
	if table != nil {
		blocks = len(table.Blocks)
	}
	f.logger.Info("featurize",
		"url", doc.URL,
		"blocks", blocks,
		"duration", time.Since(start),
		"err", err,
	)
	return table, err
}

// Columns delegates to the wrapped featurizer.
func (f *LoggingFeaturizer) Columns() []string {
	return f.next.Columns()
}
