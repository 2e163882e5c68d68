// Package persistence provides the self-describing binary snapshot format of
// a descriptor.
//
// Layout:
//
//	magic "RSCL" | version u16 | codec name (u8 length + bytes)
//	header length u32 | header (encoded with the named codec)
//	payload blocks: [uncompressed u32][compressed u32][bytes], ended by [0][0]
//	crc32 (IEEE) of everything before it
//
// The payload holds, little-endian: the samples values (int32), the features
// values (int32), the gradient samples values (int32, when present), the value
// matrix (float64) and the gradient matrix (when present). Blocks are
// compressed independently with LZ4 or ZSTD; a block with compressed size 0 is
// stored as is.
//
// CRC32 only detects accidental corruption, it is not a tamper check.
package persistence
