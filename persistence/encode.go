package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/rascal/codec"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
)

const chunkSize = 64 * 1024

// Encode writes a snapshot of d to w and returns the number of bytes written.
func Encode(w io.Writer, d *descriptor.Descriptor, opts ...Option) (int64, error) {
	o := options{
		codec:       codec.Default,
		compression: CompressionLZ4,
		blockSize:   DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := codec.ByName(o.codec.Name()); !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, o.codec.Name())
	}
	if o.compression > CompressionZSTD {
		return 0, fmt.Errorf("persistence: unknown compression %s", o.compression)
	}

	h := Header{
		SampleNames:  d.Samples().Names(),
		FeatureNames: d.Features().Names(),
		Samples:      d.Values().Rows(),
		Features:     d.Values().Cols(),
		HasGradients: d.HasGradients(),
		Compression:  o.compression,
		BlockSize:    o.blockSize,
	}
	if d.HasGradients() {
		h.GradientSampleNames = d.GradientSamples().Names()
		h.GradientSamples = d.Gradients().Rows()
	}

	hdr, err := o.codec.Marshal(&h)
	if err != nil {
		return 0, fmt.Errorf("persistence: encode header: %w", err)
	}
	if len(hdr) > maxHeaderSize {
		return 0, fmt.Errorf("persistence: header of %d bytes exceeds limit", len(hdr))
	}

	bw := bufio.NewWriter(w)
	cw := newChecksumWriter(bw)

	prefix := make([]byte, 0, len(Magic)+2+1+len(o.codec.Name())+4)
	prefix = append(prefix, Magic...)
	prefix = binary.LittleEndian.AppendUint16(prefix, Version)
	prefix = append(prefix, byte(len(o.codec.Name())))
	prefix = append(prefix, o.codec.Name()...)
	prefix = binary.LittleEndian.AppendUint32(prefix, uint32(len(hdr)))
	if _, err := cw.Write(prefix); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write(hdr); err != nil {
		return cw.n, err
	}

	blocks := newBlockWriter(cw, o.compression, o.blockSize)
	if err := writeValues(blocks, d.Samples().Values()); err != nil {
		return cw.n, err
	}
	if err := writeValues(blocks, d.Features().Values()); err != nil {
		return cw.n, err
	}
	if d.HasGradients() {
		if err := writeValues(blocks, d.GradientSamples().Values()); err != nil {
			return cw.n, err
		}
	}
	if err := writeFloats(blocks, d.Values().Data()); err != nil {
		return cw.n, err
	}
	if d.HasGradients() {
		if err := writeFloats(blocks, d.Gradients().Data()); err != nil {
			return cw.n, err
		}
	}
	if err := blocks.Close(); err != nil {
		return cw.n, err
	}

	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], cw.Sum())
	if _, err := bw.Write(sum[:]); err != nil {
		return cw.n, err
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n + 4, nil
}

func writeValues(w io.Writer, values []indexes.Value) error {
	buf := make([]byte, 0, chunkSize)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
		if len(buf) >= chunkSize {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	_, err := w.Write(buf)
	return err
}

func writeFloats(w io.Writer, values []float64) error {
	buf := make([]byte, 0, chunkSize)
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		if len(buf) >= chunkSize {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	_, err := w.Write(buf)
	return err
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	reserve descriptor.ReserveFunc
}

// WithDecodeReserve asks reserve for the matrix storage before allocating it.
// The reservation is held until Decode returns.
func WithDecodeReserve(reserve descriptor.ReserveFunc) DecodeOption {
	return func(o *decodeOptions) {
		o.reserve = reserve
	}
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader, opts ...DecodeOption) (*descriptor.Descriptor, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	cr := newChecksumReader(br)

	var fixed [len(Magic) + 2 + 1]byte
	if _, err := io.ReadFull(cr, fixed[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(fixed[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(fixed[len(Magic):]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	name := make([]byte, fixed[len(fixed)-1])
	if _, err := io.ReadFull(cr, name); err != nil {
		return nil, fmt.Errorf("%w: codec name: %v", ErrCorrupt, err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(cr, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: header length: %v", ErrCorrupt, err)
	}
	hdrLen := binary.LittleEndian.Uint32(lenBuf[:])
	if hdrLen > maxHeaderSize {
		return nil, fmt.Errorf("%w: header of %d bytes exceeds limit", ErrCorrupt, hdrLen)
	}
	raw := make([]byte, hdrLen)
	if _, err := io.ReadFull(cr, raw); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	var h Header
	if err := c.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	if o.reserve != nil {
		release, err := o.reserve(matrixBytes(&h))
		if err != nil {
			return nil, err
		}
		if release != nil {
			defer release()
		}
	}

	blocks := newBlockReader(cr, h.Compression)
	d, err := readDescriptor(blocks, &h)
	if err != nil {
		return nil, err
	}

	// The terminator must have been consumed.
	var probe [1]byte
	if n, err := blocks.Read(probe[:]); n != 0 || !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing payload data", ErrCorrupt)
	}

	actual := cr.Sum()
	if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: checksum: %v", ErrCorrupt, err)
	}
	if expected := binary.LittleEndian.Uint32(lenBuf[:]); expected != actual {
		return nil, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return d, nil
}

func matrixBytes(h *Header) int64 {
	n := descriptor.Bytes(h.Samples, h.Features)
	if h.HasGradients {
		n += descriptor.Bytes(h.GradientSamples, h.Features)
	}
	return n
}

func (h *Header) validate() error {
	if h.Samples < 0 || h.Features < 0 || h.GradientSamples < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrCorrupt)
	}
	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %s", ErrCorrupt, h.Compression)
	}
	for _, names := range [][]string{h.SampleNames, h.FeatureNames, h.GradientSampleNames} {
		for _, name := range names {
			if !indexes.IsValidName(name) {
				return fmt.Errorf("%w: invalid index name %q", ErrCorrupt, name)
			}
		}
	}
	if len(h.SampleNames) == 0 && h.Samples != 0 {
		return fmt.Errorf("%w: samples without columns", ErrCorrupt)
	}
	if len(h.FeatureNames) == 0 && h.Features != 0 {
		return fmt.Errorf("%w: features without columns", ErrCorrupt)
	}
	if h.HasGradients {
		n := len(h.GradientSampleNames)
		if n == 0 || h.GradientSampleNames[n-1] != descriptor.SpatialName {
			return fmt.Errorf("%w: gradient samples must end with %q", ErrCorrupt, descriptor.SpatialName)
		}
	}
	for _, rows := range []int{h.Samples, h.GradientSamples} {
		if h.Features != 0 && rows > math.MaxInt32/h.Features*64 {
			return fmt.Errorf("%w: %d x %d matrix is too large", ErrCorrupt, rows, h.Features)
		}
	}
	return nil
}

func readDescriptor(r io.Reader, h *Header) (*descriptor.Descriptor, error) {
	samples, err := readIndexes(r, h.SampleNames, h.Samples)
	if err != nil {
		return nil, err
	}
	features, err := readIndexes(r, h.FeatureNames, h.Features)
	if err != nil {
		return nil, err
	}

	d := descriptor.New()
	if !h.HasGradients {
		d.Prepare(samples, features)
		if err := readFloats(r, d.Values().Data()); err != nil {
			return nil, err
		}
		return d, nil
	}

	gradientSamples, err := readIndexes(r, h.GradientSampleNames, h.GradientSamples)
	if err != nil {
		return nil, err
	}
	d.PrepareGradients(samples, gradientSamples, features)
	if err := readFloats(r, d.Values().Data()); err != nil {
		return nil, err
	}
	if err := readFloats(r, d.Gradients().Data()); err != nil {
		return nil, err
	}
	return d, nil
}

func readIndexes(r io.Reader, names []string, count int) (*indexes.Indexes, error) {
	if len(names) == 0 {
		return indexes.Empty(), nil
	}
	b := indexes.NewBuilder(names...)
	row := make([]indexes.Value, len(names))
	buf := make([]byte, 4*len(names))
	for range count {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: index values: %v", ErrCorrupt, err)
		}
		for j := range row {
			row[j] = indexes.Value(int32(binary.LittleEndian.Uint32(buf[4*j:])))
		}
		b.Add(row...)
	}
	return b.Finish(), nil
}

func readFloats(r io.Reader, dst []float64) error {
	buf := make([]byte, chunkSize)
	for len(dst) > 0 {
		n := min(len(dst), chunkSize/8)
		if _, err := io.ReadFull(r, buf[:8*n]); err != nil {
			return fmt.Errorf("%w: matrix values: %v", ErrCorrupt, err)
		}
		for i := range n {
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
		}
		dst = dst[n:]
	}
	return nil
}
