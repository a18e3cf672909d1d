package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsValidTransition_LinearPass tests the single-pass chain.
func TestIsValidTransition_LinearPass(t *testing.T) {
	chain := []Stage{
		StageUnstarted, StageArgsResolved, StageLoggerReady, StageScanIngested,
		StageOutputResolved, StageAnalyzed, StageReporting, StageDone,
	}

	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, IsValidTransition(chain[i], chain[i+1]),
			"%s → %s should be valid", chain[i], chain[i+1])
	}
}

// TestIsValidTransition_NoSkipsNoReentry tests that stages cannot be
// skipped or re-entered.
func TestIsValidTransition_NoSkipsNoReentry(t *testing.T) {
	// Skipping a stage
	assert.False(t, IsValidTransition(StageUnstarted, StageLoggerReady))
	assert.False(t, IsValidTransition(StageLoggerReady, StageOutputResolved))
	assert.False(t, IsValidTransition(StageScanIngested, StageAnalyzed))

	// Re-entering / going backwards
	assert.False(t, IsValidTransition(StageAnalyzed, StageAnalyzed))
	assert.False(t, IsValidTransition(StageAnalyzed, StageScanIngested))
	assert.False(t, IsValidTransition(StageDone, StageReporting))
}

// TestIsValidTransition_FailedFromEveryNonTerminal tests the failure edge.
func TestIsValidTransition_FailedFromEveryNonTerminal(t *testing.T) {
	nonTerminal := []Stage{
		StageUnstarted, StageArgsResolved, StageLoggerReady, StageScanIngested,
		StageOutputResolved, StageAnalyzed, StageReporting,
	}
	for _, s := range nonTerminal {
		assert.True(t, IsValidTransition(s, StageFailed), "%s → failed should be valid", s)
	}
}

// TestIsValidTransition_TerminalStagesAreFinal tests that nothing leaves a
// terminal stage.
func TestIsValidTransition_TerminalStagesAreFinal(t *testing.T) {
	for _, terminal := range []Stage{StageDone, StageFailed} {
		for target := range ValidTransitions {
			assert.False(t, IsValidTransition(terminal, target))
		}
		assert.False(t, IsValidTransition(terminal, StageFailed))
	}
}

// TestIsTerminalStage tests terminal classification.
func TestIsTerminalStage(t *testing.T) {
	assert.True(t, IsTerminalStage(StageDone))
	assert.True(t, IsTerminalStage(StageFailed))
	assert.False(t, IsTerminalStage(StageUnstarted))
	assert.False(t, IsTerminalStage(StageReporting))
}
