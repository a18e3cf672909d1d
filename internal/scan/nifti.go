package scan

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// NIfTI-1 header layout constants.
const (
	niftiHeaderSize = 348
	niftiVoxOffset  = 352

	offSizeofHdr = 0
	offDim       = 40
	offDatatype  = 70
	offVoxOffset = 108
	offSclSlope  = 112
	offSclInter  = 116
	offMagic     = 344
)

// NIfTI-1 datatype codes supported by the reader.
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
)

// ReadVolume parses a single-file NIfTI-1 volume (.nii or .nii.gz).
// Both byte orders are handled; the scaling slope/intercept from the header
// is applied to the voxel data.
func ReadVolume(path string) (*Volume, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from CLI input by design
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "open scan %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return nil, errors.Wrapf(errors.ErrIO, "gunzip %s: %v", path, gzErr)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "read scan %s: %v", path, err)
	}

	return parseNIfTI(raw)
}

// parseNIfTI decodes an in-memory single-file NIfTI-1 image.
func parseNIfTI(raw []byte) (*Volume, error) {
	if len(raw) < niftiVoxOffset {
		return nil, fmt.Errorf("truncated nifti header: %d bytes", len(raw))
	}

	// Byte order is detected from sizeof_hdr, which must decode to 348.
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(raw[offSizeofHdr:]) != niftiHeaderSize {
		order = binary.BigEndian
		if order.Uint32(raw[offSizeofHdr:]) != niftiHeaderSize {
			return nil, fmt.Errorf("not a nifti-1 file: bad sizeof_hdr")
		}
	}

	magic := string(raw[offMagic : offMagic+3])
	if magic != "n+1" {
		return nil, fmt.Errorf("unsupported nifti magic %q (detached .hdr/.img pairs are not supported)", magic)
	}

	ndim := int(int16(order.Uint16(raw[offDim:])))
	if ndim < 3 || ndim > 7 {
		return nil, fmt.Errorf("unsupported dimensionality %d", ndim)
	}

	var dims [3]int
	voxels := 1
	for i := range 3 {
		d := int(int16(order.Uint16(raw[offDim+2*(i+1):])))
		if d < 1 {
			return nil, fmt.Errorf("non-positive dim[%d] = %d", i+1, d)
		}
		dims[i] = d
		voxels *= d
	}
	// Trailing dimensions beyond the third must be singleton; a 4D time
	// series cannot be reduced to one feature vector.
	for i := 4; i <= ndim; i++ {
		if d := int(int16(order.Uint16(raw[offDim+2*i:]))); d > 1 {
			return nil, fmt.Errorf("volume has %d frames in dim[%d], expected a single 3D volume", d, i)
		}
	}

	datatype := int(int16(order.Uint16(raw[offDatatype:])))
	slope := math.Float32frombits(order.Uint32(raw[offSclSlope:]))
	inter := math.Float32frombits(order.Uint32(raw[offSclInter:]))
	if slope == 0 {
		slope = 1
		inter = 0
	}

	start := int(math.Float32frombits(order.Uint32(raw[offVoxOffset:])))
	if start < niftiVoxOffset {
		start = niftiVoxOffset
	}
	if start > len(raw) {
		return nil, fmt.Errorf("vox_offset %d beyond file size %d", start, len(raw))
	}

	data, err := decodeVoxels(raw[start:], datatype, voxels, order)
	if err != nil {
		return nil, err
	}
	if slope != 1 || inter != 0 {
		for i := range data {
			data[i] = data[i]*float64(slope) + float64(inter)
		}
	}

	return &Volume{Dims: dims, Data: data}, nil
}

// decodeVoxels converts the raw voxel payload into float64 values.
func decodeVoxels(payload []byte, datatype, voxels int, order binary.ByteOrder) ([]float64, error) {
	sizes := map[int]int{dtUint8: 1, dtInt16: 2, dtInt32: 4, dtFloat32: 4, dtFloat64: 8}
	size, ok := sizes[datatype]
	if !ok {
		return nil, fmt.Errorf("unsupported nifti datatype code %d", datatype)
	}
	if len(payload) < voxels*size {
		return nil, fmt.Errorf("voxel payload truncated: have %d bytes, want %d", len(payload), voxels*size)
	}

	data := make([]float64, voxels)
	switch datatype {
	case dtUint8:
		for i := range data {
			data[i] = float64(payload[i])
		}
	case dtInt16:
		for i := range data {
			data[i] = float64(int16(order.Uint16(payload[i*2:])))
		}
	case dtInt32:
		for i := range data {
			data[i] = float64(int32(order.Uint32(payload[i*4:])))
		}
	case dtFloat32:
		for i := range data {
			data[i] = float64(math.Float32frombits(order.Uint32(payload[i*4:])))
		}
	case dtFloat64:
		for i := range data {
			data[i] = math.Float64frombits(order.Uint64(payload[i*8:]))
		}
	}
	return data, nil
}

// WriteVolume writes vol as a little-endian float32 single-file NIfTI-1
// image, gzip-compressed when path ends in .gz. Used to generate fixture
// and derived volumes.
func WriteVolume(path string, vol *Volume) error {
	header := make([]byte, niftiVoxOffset)
	order := binary.LittleEndian

	order.PutUint32(header[offSizeofHdr:], niftiHeaderSize)
	order.PutUint16(header[offDim:], 3)
	for i := range 3 {
		order.PutUint16(header[offDim+2*(i+1):], uint16(vol.Dims[i])) //nolint:gosec // dims validated small
	}
	for i := 4; i <= 7; i++ {
		order.PutUint16(header[offDim+2*i:], 1)
	}
	order.PutUint16(header[offDatatype:], dtFloat32)
	order.PutUint16(header[offDatatype+2:], 32) // bitpix
	order.PutUint32(header[offVoxOffset:], math.Float32bits(niftiVoxOffset))
	order.PutUint32(header[offSclSlope:], math.Float32bits(1))
	copy(header[offMagic:], "n+1\x00")

	payload := make([]byte, 4*len(vol.Data))
	for i, v := range vol.Data {
		order.PutUint32(payload[i*4:], math.Float32bits(float32(v)))
	}

	f, err := os.Create(path) //nolint:gosec // caller-controlled output path
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz = gzip.NewWriter(f)
		defer func() { _ = gz.Close() }()
		w = gz
	}

	if _, err := w.Write(header); err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
		}
	}
	return f.Close()
}
