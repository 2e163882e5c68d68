package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload block compression.
type Compression uint8

const (
	// CompressionNone stores blocks as is.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast block compression, the default.
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades speed for a better ratio.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd" (case-insensitive).
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("persistence: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

const blockHeaderSize = 8

// compress returns the compressed block, or nil when compression does not
// gain at least 10%.
func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 || float64(n) > float64(len(data))*0.9 {
			return nil, nil
		}
		return dst[:n], nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		out := enc.EncodeAll(data, nil)
		if float64(len(out)) > float64(len(data))*0.9 {
			return nil, nil
		}
		return out, nil
	default:
		return nil, nil
	}
}

func decompress(src []byte, size int, c Compression) ([]byte, error) {
	dst := make([]byte, size)
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return dst, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(src, dst[:0])
		if err != nil {
			return nil, err
		}
		if len(out) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compressed block with %s", c)
	}
}

// blockWriter splits a stream into independently compressed blocks.
// Close writes the [0][0] terminator.
type blockWriter struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buf         *bytes.Buffer
	hdr         [blockHeaderSize]byte
}

func newBlockWriter(w io.Writer, c Compression, blockSize int) *blockWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &blockWriter{
		w:           w,
		compression: c,
		blockSize:   blockSize,
		buf:         bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := b.blockSize - b.buf.Len()
		if space <= 0 {
			if err := b.flush(); err != nil {
				return total, err
			}
			space = b.blockSize
		}
		n := min(len(p), space)
		b.buf.Write(p[:n])
		total += n
		p = p[n:]
	}
	return total, nil
}

func (b *blockWriter) flush() error {
	if b.buf.Len() == 0 {
		return nil
	}
	data := b.buf.Bytes()
	packed, err := compress(data, b.compression)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b.hdr[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(b.hdr[4:], uint32(len(packed)))
	if _, err := b.w.Write(b.hdr[:]); err != nil {
		return err
	}
	body := data
	if packed != nil {
		body = packed
	}
	if _, err := b.w.Write(body); err != nil {
		return err
	}
	b.buf.Reset()
	return nil
}

func (b *blockWriter) Close() error {
	if err := b.flush(); err != nil {
		return err
	}
	clear(b.hdr[:])
	_, err := b.w.Write(b.hdr[:])
	return err
}

// blockReader is the streaming counterpart of blockWriter.
type blockReader struct {
	r           io.Reader
	compression Compression
	cur         []byte
	done        bool
}

func newBlockReader(r io.Reader, c Compression) *blockReader {
	return &blockReader{r: r, compression: c}
}

func (b *blockReader) Read(p []byte) (int, error) {
	for len(b.cur) == 0 {
		if b.done {
			return 0, io.EOF
		}
		if err := b.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.cur)
	b.cur = b.cur[n:]
	return n, nil
}

func (b *blockReader) next() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(b.r, hdr[:]); err != nil {
		return fmt.Errorf("%w: block header: %v", ErrCorrupt, err)
	}
	size := binary.LittleEndian.Uint32(hdr[0:])
	packed := binary.LittleEndian.Uint32(hdr[4:])
	if size == 0 {
		if packed != 0 {
			return fmt.Errorf("%w: malformed terminator", ErrCorrupt)
		}
		b.done = true
		return nil
	}
	if size > maxBlockSize || packed > maxBlockSize {
		return fmt.Errorf("%w: block of %d bytes exceeds limit", ErrCorrupt, max(size, packed))
	}
	if packed == 0 {
		buf := make([]byte, size)
		if _, err := io.ReadFull(b.r, buf); err != nil {
			return fmt.Errorf("%w: block body: %v", ErrCorrupt, err)
		}
		b.cur = buf
		return nil
	}
	src := make([]byte, packed)
	if _, err := io.ReadFull(b.r, src); err != nil {
		return fmt.Errorf("%w: block body: %v", ErrCorrupt, err)
	}
	out, err := decompress(src, int(size), b.compression)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	b.cur = out
	return nil
}
