// Package cv runs randomized hyperparameter search and nested
// cross-validation over grouped block datasets.
//
// Searches score candidates by group k-fold cross-validation, so
// blocks from one page never appear on both sides of a fit. Nested
// cross-validation repeats the full search inside each outer training
// partition and scores the winner on the held-out partition, which
// estimates the generalization of the whole selection procedure rather
// than of one lucky candidate.
package cv

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/split"
)

// FoldSpec sizes a group k-fold split: groups are dealt into Total
// folds and the first Count of them are actually run.
type FoldSpec struct {
	Count int
	Total int
}

func (s FoldSpec) validate(name string) error {
	if s.Total < 2 {
		return domsift.Errorf(domsift.EINVALID, "%s folds: total is %d, must be at least 2", name, s.Total)
	}
	if s.Count < 1 || s.Count > s.Total {
		return domsift.Errorf(domsift.EINVALID, "%s folds: count is %d, must be between 1 and %d", name, s.Count, s.Total)
	}
	return nil
}

// Config controls a search run.
type Config struct {
	// NIter is the number of candidates each randomized search draws.
	NIter int

	// Internal sizes the folds every candidate is scored on. External
	// sizes the outer folds of NestedCV and is ignored by Train.
	Internal FoldSpec
	External FoldSpec

	// NJobs bounds concurrent fits. Zero or negative means one per
	// core.
	NJobs int

	// Seed fixes candidate sampling, fold assignment and the seeds
	// derived for every fit.
	Seed int64

	// Shuffle shuffles group keys before dealing them into folds.
	Shuffle bool

	// Metric scores held-out predictions. Nil means F1.
	Metric domsift.Metric
}

// Outcome is the result of a nested cross-validation run.
type Outcome struct {
	// Scores holds one held-out score per outer fold, NaN where a
	// fold had no evaluation rows.
	Scores []float64

	// Report details each outer fold: the params the inner search
	// chose and the score they earned.
	Report []domsift.FoldReport
}

// Summary returns the mean and sample standard deviation of the outer
// fold scores, skipping no-data folds. Returns zeros when nothing can
// be computed.
func (o *Outcome) Summary() (mean, stdev float64) {
	scores := make([]float64, 0, len(o.Scores))
	for _, s := range o.Scores {
		if !math.IsNaN(s) {
			scores = append(scores, s)
		}
	}
	mean, _ = stats.Mean(scores)
	stdev, _ = stats.StandardDeviationSample(scores)
	return mean, stdev
}

// NestedCV runs a full randomized search on each outer training
// partition, refits the winner and scores it on the held-out
// partition. Returns EINVALID for an unusable config and EINTERNAL if
// every candidate of a search fails to fit.
func NestedCV(ctx context.Context, factory domsift.EstimatorFactory, ds *domsift.Dataset, dists domsift.ParamDistributions, cfg Config) (*Outcome, error) {
	if err := validate(cfg, ds, true); err != nil {
		return nil, err
	}
	metric := cfg.Metric
	if metric == nil {
		metric = domsift.F1
	}

	folds, err := split.GroupKFold(ds.Groups, cfg.External.Count, cfg.External.Total, cfg.Seed, cfg.Shuffle)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Scores: make([]float64, 0, len(folds)),
		Report: make([]domsift.FoldReport, 0, len(folds)),
	}
	for i, fold := range folds {
		train := ds.Subset(fold.Train)

		best, _, err := search(ctx, factory, train, dists, cfg, metric, subSeed(cfg.Seed, "outer", i))
		if err != nil {
			return nil, err
		}

		report := domsift.FoldReport{Fold: i, Params: best}
		if len(fold.Eval) == 0 {
			report.Score = math.NaN()
			report.NoData = true
		} else {
			est, err := fit(ctx, factory, train, best, subSeed(cfg.Seed, "refit", i))
			if err != nil {
				return nil, err
			}
			eval := ds.Subset(fold.Eval)
			preds, err := est.Predict(eval.X)
			if err != nil {
				return nil, err
			}
			report.Score = metric(eval.Y, preds)
		}
		outcome.Scores = append(outcome.Scores, report.Score)
		outcome.Report = append(outcome.Report, report)
	}
	return outcome, nil
}

// Train runs one randomized search over the entire dataset and refits
// the winning candidate on every row. The report carries the chosen
// params and their cross-validated score; use NestedCV for an unbiased
// estimate of model quality.
func Train(ctx context.Context, factory domsift.EstimatorFactory, ds *domsift.Dataset, dists domsift.ParamDistributions, cfg Config) (domsift.Estimator, *domsift.FoldReport, error) {
	if err := validate(cfg, ds, false); err != nil {
		return nil, nil, err
	}
	metric := cfg.Metric
	if metric == nil {
		metric = domsift.F1
	}

	best, score, err := search(ctx, factory, ds, dists, cfg, metric, subSeed(cfg.Seed, "search", 0))
	if err != nil {
		return nil, nil, err
	}
	est, err := fit(ctx, factory, ds, best, subSeed(cfg.Seed, "final", 0))
	if err != nil {
		return nil, nil, err
	}
	return est, &domsift.FoldReport{Params: best, Score: score}, nil
}

func validate(cfg Config, ds *domsift.Dataset, external bool) error {
	if cfg.NIter < 1 {
		return domsift.Errorf(domsift.EINVALID, "n_iter is %d, must be at least 1", cfg.NIter)
	}
	if err := cfg.Internal.validate("internal"); err != nil {
		return err
	}
	if external {
		if err := cfg.External.validate("external"); err != nil {
			return err
		}
	}
	return ds.Validate()
}

// fitJob identifies one candidate fitted and scored on one internal
// fold.
type fitJob struct {
	cand int
	fold int
}

type fitResult struct {
	fitJob
	score  float64
	failed bool
}

// search draws cfg.NIter candidates from dists and scores each by
// group k-fold cross-validation on train, running candidate/fold pairs
// concurrently. It returns the earliest-drawn candidate with the
// strictly best mean score, along with that score. A fit failure
// records the sentinel score -1 for its fold so one bad candidate
// cannot sink the search; if every fit fails the search returns
// EINTERNAL.
func search(ctx context.Context, factory domsift.EstimatorFactory, train *domsift.Dataset, dists domsift.ParamDistributions, cfg Config, metric domsift.Metric, seed int64) (domsift.Params, float64, error) {
	rng := rand.New(rand.NewSource(seed))
	candidates := make([]domsift.Params, cfg.NIter)
	for i := range candidates {
		candidates[i] = dists.Sample(rng)
	}

	folds, err := split.GroupKFold(train.Groups, cfg.Internal.Count, cfg.Internal.Total, seed, cfg.Shuffle)
	if err != nil {
		return nil, 0, err
	}

	resultCh := make(chan fitResult, len(candidates)*len(folds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs(cfg.NJobs))
	go func() {
		for c := range candidates {
			for f := range folds {
				job := fitJob{cand: c, fold: f}
				g.Go(func() error {
					resultCh <- runFit(gctx, factory, train, candidates[job.cand], folds[job.fold], metric, subSeed(seed, "fit", job.cand, job.fold), job)
					return nil
				})
			}
		}
		_ = g.Wait()
		close(resultCh)
	}()

	scores := make([][]float64, len(candidates))
	for i := range scores {
		scores[i] = make([]float64, len(folds))
	}
	failures := 0
	for result := range resultCh {
		if result.failed {
			failures++
		}
		scores[result.cand][result.fold] = result.score
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if failures == len(candidates)*len(folds) {
		return nil, 0, domsift.Errorf(domsift.EINTERNAL, "every candidate failed to fit")
	}

	best, bestScore := 0, math.Inf(-1)
	for i, ss := range scores {
		if m, _ := stats.Mean(ss); m > bestScore {
			best, bestScore = i, m
		}
	}
	return candidates[best], bestScore, nil
}

// runFit trains one candidate on a fold's training rows and scores its
// predictions on the fold's held-out rows. Construction and fit
// failures become the sentinel score -1 rather than errors.
func runFit(ctx context.Context, factory domsift.EstimatorFactory, train *domsift.Dataset, params domsift.Params, fold split.Fold, metric domsift.Metric, seed int64, job fitJob) fitResult {
	failed := fitResult{fitJob: job, score: -1, failed: true}

	est, err := factory.New(withSeed(params, seed))
	if err != nil {
		return failed
	}
	part := train.Subset(fold.Train)
	if err := est.Fit(ctx, part.X, part.Y); err != nil {
		return failed
	}
	eval := train.Subset(fold.Eval)
	preds, err := est.Predict(eval.X)
	if err != nil {
		return failed
	}
	return fitResult{fitJob: job, score: metric(eval.Y, preds)}
}

// fit builds an estimator for params and trains it on every row of ds.
func fit(ctx context.Context, factory domsift.EstimatorFactory, ds *domsift.Dataset, params domsift.Params, seed int64) (domsift.Estimator, error) {
	est, err := factory.New(withSeed(params, seed))
	if err != nil {
		return nil, err
	}
	if err := est.Fit(ctx, ds.X, ds.Y); err != nil {
		return nil, err
	}
	return est, nil
}

// withSeed returns params plus a derived seed value, leaving the
// caller's map untouched. Chosen params are reported without the
// injected seed.
func withSeed(params domsift.Params, seed int64) domsift.Params {
	out := params.Clone()
	out["seed"] = seed
	return out
}

// subSeed derives an independent seed for a labeled subtask so
// concurrent fits never share rng state and reruns stay reproducible.
func subSeed(seed int64, label string, parts ...int) int64 {
	key := strconv.FormatInt(seed, 10) + "/" + label
	for _, p := range parts {
		key += "/" + strconv.Itoa(p)
	}
	return int64(xxhash.Sum64String(key))
}

func jobs(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
