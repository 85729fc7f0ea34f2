package main

import (
	"fmt"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/extract"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if c.Site == "" && len(c.URLs) == 0 {
		err := domsift.Errorf(domsift.EINVALID, "either page URLs or --site required")
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}
	if deps.Runner == nil {
		err := domsift.Errorf(domsift.EINTERNAL, "extract runner not configured")
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	// Compile filters up front so a bad pattern fails before any fetch.
	var urlFilter *domsift.URLFilter
	if len(c.Filter) > 0 {
		var err error
		if urlFilter, err = domsift.NewURLFilter(c.Filter, nil); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}
	}

	// Apply user-specified concurrency
	if c.Concurrency > 0 {
		deps.Runner.Concurrency = c.Concurrency
	}

	target := c.Site
	if target == "" {
		target = c.URLs[0]
	}
	run := startRun(deps, domsift.RunKindExtract, "-e", c.Extractor, target)

	progress := func(event extract.ProgressEvent) {
		switch event.Type {
		case extract.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Extracting %d pages\n", event.Total)
		case extract.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", extract.TruncateURL(event.URL, 60), event.Error)
		}
	}

	var result *extract.Result
	var err error
	if c.Site != "" {
		result, err = deps.Runner.RunSite(deps.Ctx, c.Site, urlFilter, progress)
	} else {
		result, err = deps.Runner.Run(deps.Ctx, c.URLs, progress)
	}
	if err != nil {
		finishRun(deps, run, domsift.RunUpdate{}, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	if c.Out == "" {
		if len(result.Pages) > 0 {
			fmt.Fprintln(deps.Stdout, domsift.FormatPages(result.Pages))
		}
	} else {
		fmt.Fprintf(deps.Stdout, "Saved %d pages to %s (%s)\n", result.Saved, c.Out, extract.FormatBytes(result.Bytes))
	}
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, "  %d pages failed\n", result.Failed)
	}

	pages := len(result.Pages)
	finishRun(deps, run, domsift.RunUpdate{Documents: &pages}, nil)

	return nil
}
