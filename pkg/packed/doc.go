// Package packed encodes enumerated state spaces into a fixed-layout binary
// format and decodes them back.
//
// # Layout
//
// All multi-byte integers are little-endian. There is no framing beyond the
// table below, so a decoder can be written from it alone:
//
//	magic           4 bytes    "KLGR"
//	version         u16        1
//	node_count      u32
//	edge_count      u32
//	piece_count     u16
//	board_width     u8
//	board_height    u8
//	position_scale  u16        scale × 10
//	pieces          piece_count × (width u8, height u8)
//	node_ids        node_count × 16 raw fingerprint bytes
//	node_positions  node_count × piece_count × (x u8, y u8), by piece id
//	node_xyz        node_count × (x, y, z int16), round-half-even(v × scale)
//	edges           edge_count × (source u32, target u32, piece u8, dir u8)
//
// Direction codes are up=0, down=1, left=2, right=3. Nodes absent from the
// layout table are stored at (0, 0, 0).
//
// # Compression
//
// [Encode] produces the raw layout, which is also the debug emission. A
// [Codec] compresses it for delivery; gzip, zlib and zstd are provided on
// top of github.com/klauspost/compress. [Detect] picks the codec of an
// existing artifact from its leading bytes.
//
// # Errors
//
// Decoding rejects the whole input on any problem: INVALID_FORMAT for a bad
// magic or out-of-range field, UNSUPPORTED_VERSION, and TRUNCATED for a
// short buffer. Encoding fails with VALUE_OVERFLOW when a value does not fit
// its field.
package packed
