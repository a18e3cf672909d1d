package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategorize_ChainsBothSentinels tests that a categorized error matches
// both the fine-grained sentinel and its category.
func TestCategorize_ChainsBothSentinels(t *testing.T) {
	err := Categorize(ErrScanShape, ErrIngestion)
	require.Error(t, err)

	assert.True(t, stderrors.Is(err, ErrScanShape))
	assert.True(t, stderrors.Is(err, ErrIngestion))
	assert.False(t, stderrors.Is(err, ErrAnalysis))
}

// TestCategorize_NilPassthrough tests that nil errors stay nil.
func TestCategorize_NilPassthrough(t *testing.T) {
	assert.NoError(t, Categorize(nil, ErrIngestion))
}

// TestWrap_PreservesChain tests that Wrap keeps errors.Is working.
func TestWrap_PreservesChain(t *testing.T) {
	err := Wrap(ErrDegenerateFit, "pls fit")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrDegenerateFit))
	assert.Contains(t, err.Error(), "pls fit")
}

// TestWrap_NilPassthrough tests nil handling for both wrap helpers.
func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ctx"))
	assert.NoError(t, Wrapf(nil, "ctx %d", 1))
}

// TestWrapf_Formats tests message interpolation.
func TestWrapf_Formats(t *testing.T) {
	err := Wrapf(ErrUnsupportedFormat, "scan %q", "brain.dcm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scan "brain.dcm"`)
	assert.True(t, stderrors.Is(err, ErrUnsupportedFormat))
}

// TestIsFatal tests the fatal classification of the category sentinels.
func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"usage", ErrUsage, true},
		{"io", ErrIO, true},
		{"ingestion", Categorize(ErrScanShape, ErrIngestion), true},
		{"analysis", Categorize(ErrDegenerateFit, ErrAnalysis), true},
		{"report", Wrap(ErrReport, "plots"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}
