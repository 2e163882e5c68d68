package persistence

import (
	"errors"

	"github.com/hupe1980/rascal/codec"
)

const (
	// Magic identifies snapshot files (ASCII "RSCL").
	Magic = "RSCL"
	// Version is the current format version.
	Version uint16 = 1

	// DefaultBlockSize is the uncompressed size of payload blocks.
	DefaultBlockSize = 256 * 1024

	maxHeaderSize = 1 << 24
	maxBlockSize  = 64 << 20
)

var (
	ErrBadMagic           = errors.New("persistence: not a snapshot (bad magic)")
	ErrUnsupportedVersion = errors.New("persistence: unsupported version")
	ErrUnknownCodec       = errors.New("persistence: unknown codec")
	ErrCorrupt            = errors.New("persistence: corrupt snapshot")
	ErrChecksum           = errors.New("persistence: checksum mismatch")
)

// Header describes the shape of the stored descriptor.
type Header struct {
	SampleNames         []string    `json:"sample_names" cbor:"1,keyasint"`
	FeatureNames        []string    `json:"feature_names" cbor:"2,keyasint"`
	GradientSampleNames []string    `json:"gradient_sample_names,omitempty" cbor:"3,keyasint,omitempty"`
	Samples             int         `json:"samples" cbor:"4,keyasint"`
	Features            int         `json:"features" cbor:"5,keyasint"`
	GradientSamples     int         `json:"gradient_samples" cbor:"6,keyasint"`
	HasGradients        bool        `json:"has_gradients" cbor:"7,keyasint"`
	Compression         Compression `json:"compression" cbor:"8,keyasint"`
	BlockSize           int         `json:"block_size" cbor:"9,keyasint"`
}

// PayloadSize returns the uncompressed payload size described by h.
func (h *Header) PayloadSize() int64 {
	n := int64(h.Samples)*int64(len(h.SampleNames))*4 +
		int64(h.Features)*int64(len(h.FeatureNames))*4 +
		int64(h.Samples)*int64(h.Features)*8
	if h.HasGradients {
		n += int64(h.GradientSamples)*int64(len(h.GradientSampleNames))*4 +
			int64(h.GradientSamples)*int64(h.Features)*8
	}
	return n
}

type options struct {
	codec       codec.Codec
	compression Compression
	blockSize   int
}

// Option configures Encode.
type Option func(*options)

// WithCodec sets the header codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the payload compression. Defaults to LZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed payload block size.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 && n <= maxBlockSize {
			o.blockSize = n
		}
	}
}
