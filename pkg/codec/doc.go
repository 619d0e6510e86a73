// Package codec provides field validation and fixed-width record
// serialization for dBASE III PLUS table files.
//
// The codec package implements the record layer of the format: each
// row occupies a fixed number of bytes determined entirely by the
// field list, so records can be addressed by index without any
// per-row framing.
//
// # Record Format
//
// A record is laid out as:
//
//	[DeleteFlag(1)][Field 1][Field 2]...[Field n]
//
// Fields:
//   - DeleteFlag: 0x20 (space) for a live row, '*' for a tombstoned
//     row whose bytes remain on disk but which reads treat as absent
//   - Character: left-justified text, space padded to the field width
//   - Numeric: fixed-point number, right-justified to the field width
//     with the declared decimal count
//   - Date: 8 bytes, MM/DD/YY, stored verbatim and never validated
//   - Logical: one byte from {y,Y,t,T,1} (true) or {n,N,f,F,0,?}
//     (false/unknown)
//
// The total record size is: 1 byte (flag) + the sum of field widths.
//
// # Normalization
//
// Decoding normalizes values rather than echoing raw bytes: Character
// fields lose trailing pad spaces, Numeric fields lose leading pad
// spaces, and Logical bytes collapse to a bool. A round trip through
// Encode and Decode therefore yields the normalized form of the
// input, not necessarily the identical string.
//
// # Truncation
//
// Any value that formats wider than its field is silently truncated
// to the field width. Legacy writers behave this way and callers
// depend on it; over-width input is never an error.
//
// # Code Pages
//
// Character data in legacy files is frequently stored in a DOS or
// Windows code page. A codec built with a non-nil encoding translates
// Character fields to and from UTF-8; Date and Numeric fields are
// always plain ASCII and bypass translation.
//
// # Thread Safety
//
// The storage model is single-threaded synchronous I/O, and the codec
// follows it: a RecordCodec is immutable after construction, but its
// code-page transforms carry scratch state, so share one codec across
// goroutines only with external synchronization.
package codec
