/*
Package rle provides run-length entries for the btree package and a compact
binary encoding for lists of runs.

Range is a plain span of consecutive ids. Run additionally carries a deleted
flag, so that a sequence of runs describes a document together with its
tombstones: deleted runs keep their raw length but contribute no content.

Run lists are encoded as pairs of varints: the zigzag delta of a run's start
relative to the end of its predecessor, followed by the run length with the
deleted flag mixed into its low bit.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package rle
