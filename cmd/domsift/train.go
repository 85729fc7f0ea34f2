package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/cv"
	"github.com/fwojciec/domsift/dataset"
	"github.com/fwojciec/domsift/fs"
)

// Run executes the train command.
func (c *TrainCmd) Run(deps *Dependencies) error {
	factory, err := deps.Estimators.Get(c.Estimator)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	metric, err := domsift.MetricByName(c.Metric)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	external, err := foldSpec("external", c.ExternalFolds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}
	internal, err := foldSpec("internal", c.InternalFolds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	if c.SkipCV && c.ModelFile == "" {
		err := domsift.Errorf(domsift.EINVALID, "--skip-cv without --model-file leaves nothing to do")
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	dists, err := c.searchSpace()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	run := startRun(deps, domsift.RunKindTrain, append([]string{"-e", c.Estimator}, c.Shards...)...)

	ds, err := dataset.Assemble(c.Shards, dataset.AssembleOptions{
		FeatureColumns: c.Feature,
		Sparse:         c.Sparse,
		Categorize:     true,
	})
	if err != nil {
		finishRun(deps, run, domsift.RunUpdate{}, err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	blocks := len(ds.Y)
	pages := countGroups(ds.Groups)
	fmt.Fprintf(deps.Stdout, "Assembled %d blocks from %d pages (%d features)\n", blocks, pages, len(ds.Columns))

	cfg := cv.Config{
		NIter:    c.NIter,
		Internal: internal,
		External: external,
		NJobs:    c.NJobs,
		Seed:     c.Seed,
		Shuffle:  c.Shuffle,
		Metric:   metric,
	}

	upd := domsift.RunUpdate{Documents: &pages, Blocks: &blocks}

	if !c.SkipCV {
		outcome, err := cv.NestedCV(deps.Ctx, factory, ds, dists, cfg)
		if err != nil {
			finishRun(deps, run, upd, err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}

		scoresPath := strings.ReplaceAll(c.ScoreFiles, "{suffix}", "scores")
		reportPath := strings.ReplaceAll(c.ScoreFiles, "{suffix}", "cv")
		if err := fs.WriteScores(scoresPath, outcome.Scores); err != nil {
			finishRun(deps, run, upd, err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}
		if err := fs.WriteFoldReports(reportPath, outcome.Report); err != nil {
			finishRun(deps, run, upd, err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}

		mean, stdev := outcome.Summary()
		fmt.Fprintf(deps.Stdout, "%s over %d outer folds: %.4f (stdev %.4f)\n", c.Metric, len(outcome.Scores), mean, stdev)
		fmt.Fprintf(deps.Stdout, "  scores: %s\n", scoresPath)
		fmt.Fprintf(deps.Stdout, "  report: %s\n", reportPath)
		upd.Score = &mean
	}

	if c.ModelFile != "" {
		estimator, report, err := cv.Train(deps.Ctx, factory, ds, dists, cfg)
		if err != nil {
			finishRun(deps, run, upd, err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}

		model := &domsift.Model{
			Family:    c.Estimator,
			Columns:   ds.Columns,
			Params:    report.Params,
			Estimator: estimator,
		}
		if err := fs.SaveModel(c.ModelFile, model); err != nil {
			finishRun(deps, run, upd, err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Saved %s model to %s (inner %s %.4f)\n", c.Estimator, c.ModelFile, c.Metric, report.Score)
	}

	finishRun(deps, run, upd, nil)
	return nil
}

// searchSpace builds the hyperparameter search space from --param-file
// and --param flags. With neither given, the estimator family's default
// space is used. A --param value is parsed as a JSON fragment, so bare
// scalars fix a value, arrays list candidates and objects name a
// distribution; values that are not valid JSON are taken as literal
// strings.
func (c *TrainCmd) searchSpace() (domsift.ParamDistributions, error) {
	if c.ParamFile == "" && len(c.Param) == 0 {
		return defaultSearchSpace(c.Estimator)
	}

	dists := domsift.ParamDistributions{}
	if c.ParamFile != "" {
		data, err := os.ReadFile(c.ParamFile)
		if err != nil {
			return nil, err
		}
		if dists, err = domsift.ParseParamDistributions(data); err != nil {
			return nil, err
		}
	}

	for _, pair := range c.Param {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, domsift.Errorf(domsift.EINVALID, "param %q: want name=value", pair)
		}
		raw := json.RawMessage(value)
		if !json.Valid(raw) {
			raw = json.RawMessage(strconv.Quote(value))
		}
		obj, err := json.Marshal(map[string]json.RawMessage{name: raw})
		if err != nil {
			return nil, err
		}
		parsed, err := domsift.ParseParamDistributions(obj)
		if err != nil {
			return nil, err
		}
		dists[name] = parsed[name]
	}
	return dists, nil
}

// defaultSearchSpace is the space searched when no flags narrow it,
// covering the usual tuning spans of each family.
func defaultSearchSpace(family string) (domsift.ParamDistributions, error) {
	switch family {
	case "logreg":
		return domsift.ParamDistributions{
			"c": domsift.LogUniform{Min: 0.0001, Max: 100},
		}, nil
	case "tree":
		return domsift.ParamDistributions{
			"max_depth":        domsift.IntRange{Min: 2, Max: 20},
			"min_samples_leaf": domsift.Choice{1, 2, 5, 10},
			"max_features":     domsift.Choice{0.25, 0.5, 0.75, 1.0},
		}, nil
	case "forest":
		return domsift.ParamDistributions{
			"n_estimators": domsift.Choice{10, 30, 100},
			"max_depth":    domsift.IntRange{Min: 2, Max: 20},
			"max_features": domsift.Choice{0.25, 0.5, 0.75, 1.0},
		}, nil
	}
	return nil, domsift.Errorf(domsift.EINVALID, "no default search space for estimator %q; provide --param-file or --param", family)
}

// foldSpec converts a count,total flag pair.
func foldSpec(name string, pair []int) (cv.FoldSpec, error) {
	if len(pair) != 2 {
		return cv.FoldSpec{}, domsift.Errorf(domsift.EINVALID, "%s folds: want count,total, got %v", name, pair)
	}
	return cv.FoldSpec{Count: pair[0], Total: pair[1]}, nil
}

// countGroups counts distinct group keys, one per source page.
func countGroups(groups []string) int {
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		seen[g] = struct{}{}
	}
	return len(seen)
}
