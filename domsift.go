// Package domsift turns raw HTML pages into block-level feature datasets
// and trains classifiers that separate main content from boilerplate. It
// extracts DOM neighborhood features for every text block, assembles the
// results into leakage-safe grouped datasets, and evaluates estimators
// with nested cross-validation and randomized hyperparameter search.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, logreg/).
package domsift
