package instrset

// BlockCalls maps a function to its basic blocks, each an ordered list of
// callees invoked within that block. It is the hook for a finer-grained
// block-level call analysis; today no producer fills it in.
type BlockCalls map[string][][]string

// ExpandInternal closes seeds over block-level call information. It has the
// same breadth-first shape as TransitiveClosure but walks the two-level
// function -> blocks -> callees structure. With empty or nil block data it
// returns the seeds unchanged, so the analyzer can call it unconditionally.
func ExpandInternal(seeds Set, bb BlockCalls) Set {
	expanded := seeds.Clone()
	if expanded == nil {
		expanded = NewSet()
	}
	if len(bb) == 0 {
		return expanded
	}

	queue := make([]string, 0, len(expanded))
	for fn := range expanded {
		queue = append(queue, fn)
	}

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]

		for _, block := range bb[fn] {
			for _, callee := range block {
				if expanded.Has(callee) {
					continue
				}
				expanded.Add(callee)
				queue = append(queue, callee)
			}
		}
	}

	return expanded
}
