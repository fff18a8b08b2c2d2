package kvp

// pendingValue is a value that has not been copied out of the input yet.
// seq is the order in which the pair was flushed
type pendingValue struct {
	value span
	seq   uint64
}

// materialize builds the result map with owned strings.
// Raw keys are unique but with escaping different raw keys
// (e.g. `a\b` and `ab`) can map to the same key, in which case
// the pair flushed last wins.
func materialize[H stateHandler](h H, in string, pending map[string]pendingValue) map[string]string {
	res := make(map[string]string, len(pending))
	if !h.canMerge() {
		for k, v := range pending {
			res[h.unescape(k)] = h.unescape(v.value.of(in))
		}
		return res
	}
	seqs := make(map[string]uint64, len(pending))
	for k, v := range pending {
		key := h.unescape(k)
		if prev, ok := seqs[key]; ok && prev > v.seq {
			continue
		}
		seqs[key] = v.seq
		res[key] = h.unescape(v.value.of(in))
	}
	return res
}
