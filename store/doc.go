// Package store decodes the packed bitmap files written by the producer.
//
// A bitmap file is a flat sequence of rows, one per time bucket. Each row
// holds ByteVectorSize bytes; address bucket a is bit 7-(a%8) of byte a/8
// (most significant bit first) and bits past VectorSize are padding. Rows
// are appended chronologically until the file holds Window rows. From then
// on the producer overwrites row (intervals mod Window), turning the file
// into a ring buffer.
//
// Reading turns such a file into an address-major matrix.Matrix whose
// column 0 is the oldest retained time bucket. The store never writes.
package store
