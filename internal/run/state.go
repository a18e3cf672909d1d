// Package run owns the end-to-end sequence and failure boundary of a single
// pipeline invocation.
//
// This file implements the run stage machine, which enforces the strict
// single-pass ordering of the pipeline: no stage is skipped, no stage is
// re-entered, and Failed is reachable from every non-terminal stage.
package run

import (
	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// Stage names a point in the run lifecycle.
type Stage string

// Run lifecycle stages, in execution order.
const (
	StageUnstarted      Stage = "unstarted"
	StageArgsResolved   Stage = "args_resolved"
	StageLoggerReady    Stage = "logger_ready"
	StageScanIngested   Stage = "scan_ingested"
	StageOutputResolved Stage = "output_resolved"
	StageAnalyzed       Stage = "analyzed"
	StageReporting      Stage = "reporting"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// ValidTransitions defines all allowed stage transitions in the run
// lifecycle. The pipeline is a single linear pass:
//
//	Unstarted → ArgsResolved → LoggerReady → ScanIngested →
//	OutputResolved → Analyzed → Reporting → Done
//
// with Failed reachable from every non-terminal stage.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[Stage][]Stage{
	StageUnstarted:      {StageArgsResolved, StageFailed},
	StageArgsResolved:   {StageLoggerReady, StageFailed},
	StageLoggerReady:    {StageScanIngested, StageFailed},
	StageScanIngested:   {StageOutputResolved, StageFailed},
	StageOutputResolved: {StageAnalyzed, StageFailed},
	StageAnalyzed:       {StageReporting, StageFailed},
	StageReporting:      {StageDone, StageFailed},
}

// IsValidTransition checks if a transition from one stage to another is
// allowed. Returns false for transitions from terminal stages or to the
// same stage.
func IsValidTransition(from, to Stage) bool {
	if from == to {
		return false
	}
	targets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal or unknown stage
	}
	for _, target := range targets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalStage returns true for stages where no further transitions are
// allowed. Terminal stages: Done, Failed.
func IsTerminalStage(s Stage) bool {
	return s == StageDone || s == StageFailed
}

// transition advances the orchestrator's stage, enforcing the machine.
func (o *Orchestrator) transition(to Stage) error {
	if !IsValidTransition(o.stage, to) {
		return errors.Wrapf(errors.ErrInvalidTransition, "%s → %s", o.stage, to)
	}
	o.stage = to
	return nil
}
