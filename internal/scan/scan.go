// Package scan ingests volumetric neuroimaging files and reduces them to
// region-averaged feature vectors.
//
// Supported input formats are NIfTI-1 volumes (.nii, .nii.gz). Reduction
// averages the scan's voxels per region of a parcellation atlas volume; the
// default atlas is the 41-region left-hemisphere Desikan-Killiany
// parcellation, matching the coverage of the gene expression reference data.
package scan

import (
	"math"
	"strings"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// FeatureVector is the region-averaged representation of a scan, one value
// per atlas region.
type FeatureVector []float64

// Volume is a 3D voxel grid in NIfTI x-fastest order.
type Volume struct {
	// Dims are the grid extents (nx, ny, nz).
	Dims [3]int
	// Data holds Dims[0]*Dims[1]*Dims[2] voxels, x varying fastest.
	Data []float64
}

// Voxels returns the total voxel count of the grid.
func (v *Volume) Voxels() int {
	return v.Dims[0] * v.Dims[1] * v.Dims[2]
}

// Ingestor reads a volumetric scan and reduces it to a feature vector.
// The orchestrator depends on this interface; Adapter is the default
// implementation.
type Ingestor interface {
	// Read parses the scan at path into a voxel grid.
	Read(path string) (*Volume, error)

	// Reduce averages the grid per atlas region into a feature vector.
	Reduce(vol *Volume) (FeatureVector, error)
}

// Adapter implements Ingestor against a parcellation atlas volume loaded
// lazily on first reduction.
type Adapter struct {
	atlasPath string
	regions   int
	atlas     *Volume
}

// NewAdapter returns an Adapter that reduces scans against the atlas volume
// at atlasPath with the given region count.
func NewAdapter(atlasPath string, regions int) *Adapter {
	return &Adapter{atlasPath: atlasPath, regions: regions}
}

// supportedExtension reports whether path names a supported volumetric
// format.
func supportedExtension(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".nii") || strings.HasSuffix(lower, ".nii.gz")
}

// Read parses the scan at path. Unsupported extensions and unreadable or
// malformed files map to ErrIngestion.
func (a *Adapter) Read(path string) (*Volume, error) {
	if !supportedExtension(path) {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrUnsupportedFormat, "%s (want .nii or .nii.gz)", path),
			errors.ErrIngestion)
	}

	vol, err := ReadVolume(path)
	if err != nil {
		return nil, errors.Categorize(err, errors.ErrIngestion)
	}
	return vol, nil
}

// Reduce averages vol per atlas region. The scan must share the atlas grid
// exactly; a mismatch or an atlas region with no voxels maps to
// ErrIngestion.
func (a *Adapter) Reduce(vol *Volume) (FeatureVector, error) {
	if a.atlas == nil {
		atlas, err := ReadVolume(a.atlasPath)
		if err != nil {
			return nil, errors.Categorize(
				errors.Wrap(err, "failed to load parcellation atlas"),
				errors.ErrIngestion)
		}
		a.atlas = atlas
	}

	if vol.Dims != a.atlas.Dims {
		return nil, errors.Categorize(
			errors.Wrapf(errors.ErrScanShape, "scan %v vs atlas %v", vol.Dims, a.atlas.Dims),
			errors.ErrIngestion)
	}

	sums := make([]float64, a.regions)
	counts := make([]int, a.regions)
	for i, label := range a.atlas.Data {
		region := int(math.Round(label))
		if region < 1 || region > a.regions {
			continue
		}
		sums[region-1] += vol.Data[i]
		counts[region-1]++
	}

	features := make(FeatureVector, a.regions)
	for r := range features {
		if counts[r] == 0 {
			return nil, errors.Categorize(
				errors.Wrapf(errors.ErrEmptyRegion, "region %d", r+1),
				errors.ErrIngestion)
		}
		features[r] = sums[r] / float64(counts[r])
	}
	return features, nil
}
