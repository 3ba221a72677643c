// Package mmap maps bitmap files read-only into memory.
//
// A Mapping is a snapshot: its length is fixed by the file size observed
// when it was opened, so rows appended afterwards by the producer are not
// visible through it. Producers only append or rewrite rows in place; they
// never truncate, which keeps the mapped range valid for the mapping's
// lifetime.
//
// On Unix the file is mapped with mmap(2). Elsewhere the snapshot is read
// into memory.
package mmap
