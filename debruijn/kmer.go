package debruijn

// Kmers calls fn once per k-length window of seq, left to right:
// seq[0:k], seq[1:k+1], ... seq[len(seq)-k:]. A sequence shorter than
// k yields no windows. Each callback argument is a subslice sharing
// seq's backing array; callers that retain it past the callback must
// copy. Kmers has no side effects and can be called again to iterate
// again.
func Kmers(seq []byte, k int, fn func(kmer []byte)) error {
	if k < 2 {
		return ErrInvalidK
	}
	kmers(seq, k, fn)
	return nil
}

func kmers(seq []byte, k int, fn func(kmer []byte)) {
	for i := 0; i+k <= len(seq); i++ {
		fn(seq[i : i+k])
	}
}
