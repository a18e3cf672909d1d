package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// testDims is a small grid shared by the fixture volumes.
var testDims = [3]int{4, 4, 2}

// constantVolume returns a volume with every voxel set to value.
func constantVolume(value float64) *Volume {
	v := &Volume{Dims: testDims}
	v.Data = make([]float64, v.Voxels())
	for i := range v.Data {
		v.Data[i] = value
	}
	return v
}

// labeledAtlas returns an atlas volume assigning voxels round-robin to
// regions 1..regions.
func labeledAtlas(regions int) *Volume {
	v := &Volume{Dims: testDims}
	v.Data = make([]float64, v.Voxels())
	for i := range v.Data {
		v.Data[i] = float64(i%regions + 1)
	}
	return v
}

// writeFixture writes vol to dir/name and returns its path.
func writeFixture(t *testing.T, dir, name string, vol *Volume) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, WriteVolume(path, vol))
	return path
}

// TestReadVolume_RoundTrip tests write-then-read for plain and gzipped files.
func TestReadVolume_RoundTrip(t *testing.T) {
	for _, name := range []string{"vol.nii", "vol.nii.gz"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			want := labeledAtlas(5)
			path := writeFixture(t, dir, name, want)

			got, err := ReadVolume(path)
			require.NoError(t, err)
			assert.Equal(t, want.Dims, got.Dims)
			assert.InDeltaSlice(t, want.Data, got.Data, 1e-6)
		})
	}
}

// TestReadVolume_Missing tests that an absent file maps to an IO error.
func TestReadVolume_Missing(t *testing.T) {
	_, err := ReadVolume(filepath.Join(t.TempDir(), "missing.nii"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
}

// TestReadVolume_Garbage tests rejection of a non-NIfTI payload.
func TestReadVolume_Garbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.nii")
	junk := make([]byte, 512)
	for i := range junk {
		junk[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, junk, 0o600))

	_, err := ReadVolume(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sizeof_hdr")
}

// TestReadVolume_Truncated tests rejection of a short file.
func TestReadVolume_Truncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.nii")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))

	_, err := ReadVolume(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

// TestAdapter_Read_UnsupportedExtension tests the format allowlist.
func TestAdapter_Read_UnsupportedExtension(t *testing.T) {
	a := NewAdapter("unused", 5)

	_, err := a.Read("brain.dcm")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, errors.ErrIngestion)
}

// TestAdapter_Read_MissingFile tests that a missing scan is an ingestion
// failure.
func TestAdapter_Read_MissingFile(t *testing.T) {
	a := NewAdapter("unused", 5)

	_, err := a.Read(filepath.Join(t.TempDir(), "missing.nii"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIngestion)
}

// TestAdapter_Reduce_Averages tests region averaging against a known atlas.
func TestAdapter_Reduce_Averages(t *testing.T) {
	dir := t.TempDir()
	const regions = 4
	atlasPath := writeFixture(t, dir, "atlas.nii.gz", labeledAtlas(regions))

	// Scan values equal the voxel's region label, so each region's average
	// is its own label.
	scanVol := labeledAtlas(regions)
	a := NewAdapter(atlasPath, regions)

	features, err := a.Reduce(scanVol)
	require.NoError(t, err)
	require.Len(t, features, regions)
	for r := range regions {
		assert.InDelta(t, float64(r+1), features[r], 1e-9)
	}
}

// TestAdapter_Reduce_ShapeMismatch tests dimensional compatibility checks.
func TestAdapter_Reduce_ShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	atlasPath := writeFixture(t, dir, "atlas.nii", labeledAtlas(3))
	a := NewAdapter(atlasPath, 3)

	wrong := &Volume{Dims: [3]int{2, 2, 2}, Data: make([]float64, 8)}
	_, err := a.Reduce(wrong)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrScanShape)
	assert.ErrorIs(t, err, errors.ErrIngestion)
}

// TestAdapter_Reduce_EmptyRegion tests that a region absent from the atlas
// volume fails rather than producing a silent NaN.
func TestAdapter_Reduce_EmptyRegion(t *testing.T) {
	dir := t.TempDir()
	// Atlas labels cover regions 1..3 but the adapter expects 5.
	atlasPath := writeFixture(t, dir, "atlas.nii", labeledAtlas(3))
	a := NewAdapter(atlasPath, 5)

	_, err := a.Reduce(constantVolume(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyRegion)
}

// TestAdapter_Reduce_BadAtlasPath tests atlas load failure handling.
func TestAdapter_Reduce_BadAtlasPath(t *testing.T) {
	a := NewAdapter(filepath.Join(t.TempDir(), "missing-atlas.nii.gz"), 41)

	_, err := a.Reduce(constantVolume(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIngestion)
}
