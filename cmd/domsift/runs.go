package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/domsift"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := domsift.RunFilter{Limit: c.Limit}
	if c.Kind != "" {
		filter.Kind = &c.Kind
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", domsift.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Run 'domsift features' or 'domsift train' first.")
		return nil
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %s  %-8s  %-9s  %s",
			run.ID, run.StartedAt.Format("2006-01-02 15:04"), run.Kind, run.Status, run.Command)
		if run.Status == domsift.RunStatusCompleted && run.Kind == domsift.RunKindTrain {
			line += fmt.Sprintf("  score=%.4f", run.Score)
		}
		if run.Status == domsift.RunStatusFailed && run.Error != "" {
			line += "  " + run.Error
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}

// startRun opens a run record for a command invocation. Bookkeeping
// failures are warned about rather than aborting the command, so a
// broken history database never blocks pipeline work.
func startRun(deps *Dependencies, kind string, args ...string) *domsift.Run {
	if deps.Runs == nil {
		return nil
	}
	run := &domsift.Run{
		Kind:    kind,
		Command: strings.Join(append([]string{kind}, args...), " "),
		Status:  domsift.RunStatusRunning,
	}
	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: could not record run: %s\n", domsift.ErrorMessage(err))
		return nil
	}
	return run
}

// finishRun closes a run record with the command's outcome.
func finishRun(deps *Dependencies, run *domsift.Run, upd domsift.RunUpdate, cmdErr error) {
	if run == nil {
		return
	}
	now := time.Now().UTC()
	upd.FinishedAt = &now
	status := domsift.RunStatusCompleted
	if cmdErr != nil {
		status = domsift.RunStatusFailed
		message := domsift.ErrorMessage(cmdErr)
		upd.Error = &message
	}
	upd.Status = &status
	if _, err := deps.Runs.UpdateRun(deps.Ctx, run.ID, upd); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: could not record run: %s\n", domsift.ErrorMessage(err))
	}
}
