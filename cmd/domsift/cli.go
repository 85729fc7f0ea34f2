package main

import (
	"context"
	"io"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/extract"
	"github.com/fwojciec/domsift/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	DB         *sqlite.DB
	Runs       domsift.RunService
	Sitemaps   domsift.SitemapService
	Featurizer domsift.Featurizer
	Estimators *domsift.EstimatorRegistry
	Runner     *extract.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log service calls to stderr"`

	Features FeaturesCmd `cmd:"" help:"Extract block features from HTML documents"`
	Train    TrainCmd    `cmd:"" help:"Train and evaluate a block classifier on feature shards"`
	Extract  ExtractCmd  `cmd:"" help:"Extract main content from live pages"`
	Runs     RunsCmd     `cmd:"" help:"List recorded pipeline runs"`
}

// FeaturesCmd is the "features" subcommand.
type FeaturesCmd struct {
	Input   string `arg:"" help:"Labeled document CSV, or a glob of HTML files"`
	Output  string `short:"o" default:"features.csv" help:"Feature shard path"`
	Depth   int    `default:"5" help:"Ancestor hops contributing per-hop features"`
	Height  int    `default:"5" help:"Descendant and sibling window bound"`
	Workers int    `short:"w" default:"8" help:"Concurrent document limit"`
	Dedup   bool   `default:"true" help:"Skip documents whose URL repeats"`
}

// TrainCmd is the "train" subcommand.
type TrainCmd struct {
	Shards        []string `arg:"" help:"Feature shard CSV paths"`
	Estimator     string   `short:"e" default:"logreg" help:"Estimator family (logreg, tree, forest)"`
	ParamFile     string   `help:"JSON file describing the hyperparameter search space"`
	Param         []string `short:"p" help:"Search space entry as name=value (repeatable, overrides the file)"`
	Feature       []string `help:"Feature columns to train on (repeatable, default: all)"`
	NIter         int      `default:"20" help:"Candidates sampled per randomized search"`
	ExternalFolds []int    `default:"10,10" help:"Outer folds as count,total"`
	InternalFolds []int    `default:"10,10" help:"Inner folds as count,total"`
	NJobs         int      `default:"-1" help:"Concurrent fits (-1 means one per core)"`
	Seed          int64    `default:"42" help:"Seed for sampling, folds and fits"`
	Shuffle       bool     `default:"true" help:"Shuffle groups before dealing folds"`
	Metric        string   `default:"f1" help:"Scoring metric"`
	Sparse        bool     `default:"true" help:"Assemble features in sparse form"`
	ScoreFiles    string   `default:"{suffix}.csv" help:"Output pattern; {suffix} becomes scores and cv"`
	ModelFile     string   `short:"m" help:"Refit on all data and write the model here"`
	SkipCV        bool     `help:"Skip the nested evaluation, only train the final model"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URLs        []string `arg:"" optional:"" help:"Page URLs to extract"`
	Site        string   `short:"s" help:"Discover URLs from this site's sitemap instead"`
	Filter      []string `short:"F" name:"filter" help:"Filter discovered URLs by regex (repeatable)"`
	Extractor   string   `short:"e" default:"trafilatura" help:"Extractor (trafilatura, readability, blockmodel)"`
	Model       string   `short:"m" help:"Trained model file for the blockmodel extractor"`
	Out         string   `short:"o" help:"Directory to save pages into (default: print to stdout)"`
	Browser     bool     `help:"Fetch with a headless browser"`
	Concurrency int      `short:"c" default:"10" help:"Concurrent fetch limit"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Kind  string `help:"Only show runs of this kind (features, train, extract)"`
	Limit int    `default:"20" help:"Maximum runs to show"`
}
