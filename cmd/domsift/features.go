package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/featurize"
	"github.com/fwojciec/domsift/fs"
)

// Run executes the features command.
func (c *FeaturesCmd) Run(deps *Dependencies) error {
	run := startRun(deps, domsift.RunKindFeatures, c.Input, "-o", c.Output)

	docs, err := readDocuments(c.Input)
	if err != nil {
		finishRun(deps, run, domsift.RunUpdate{}, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	runner := &featurize.Runner{
		Featurizer: deps.Featurizer,
		Workers:    c.Workers,
		Dedup:      c.Dedup,
	}

	progress := func(event featurize.ProgressEvent) {
		switch event.Type {
		case featurize.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Featurizing %d documents\n", event.Total)
		case featurize.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		}
	}

	result, err := runner.Run(deps.Ctx, docs, progress)
	if err != nil {
		finishRun(deps, run, domsift.RunUpdate{}, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	if err := fs.WriteTable(c.Output, result.Table); err != nil {
		finishRun(deps, run, domsift.RunUpdate{}, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	blocks := len(result.Table.Blocks)
	finishRun(deps, run, domsift.RunUpdate{Documents: &result.Extracted, Blocks: &blocks}, nil)

	fmt.Fprintf(deps.Stdout, "Wrote %d blocks from %d documents to %s\n", blocks, result.Extracted, c.Output)
	if result.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, "  %d duplicate URLs skipped\n", result.Skipped)
	}
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d documents failed\n", result.Failed)
	}

	return nil
}

// readDocuments loads the input as a document table when it is a CSV
// file and as a glob of standalone HTML files otherwise.
func readDocuments(input string) ([]*domsift.Document, error) {
	if strings.EqualFold(filepath.Ext(input), ".csv") {
		return fs.ReadDocumentsCSV(input)
	}
	return fs.ReadDocumentsGlob(input)
}
