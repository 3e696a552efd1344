package internal

import (
	"iter"
)

// Concat2 concatenates dual-return iterators into a single iterator sequence.
// Nil sequences are skipped.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			if seq == nil {
				continue
			}
			for key, val := range seq {
				if !yield(key, val) {
					return
				}
			}
		}
	}
}
