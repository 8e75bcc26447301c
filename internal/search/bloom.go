package search

// bloomFilter is a plain bit-array filter used as a cheap negative check for
// known labels before scanning for duplicates.
type bloomFilter struct {
	bits   []bool
	hashes int
}

func newBloomFilter(size int, hashes int) *bloomFilter {
	if size < 1 {
		size = 1
	}
	if hashes < 1 {
		hashes = 1
	}
	return &bloomFilter{bits: make([]bool, size), hashes: hashes}
}

func (b *bloomFilter) hash(s string, seed uint32) int {
	h := seed
	for _, ch := range s {
		h = (h << 5) - h + uint32(ch)
	}
	return int(h % uint32(len(b.bits)))
}

func (b *bloomFilter) add(item string) {
	for i := 0; i < b.hashes; i++ {
		b.bits[b.hash(item, uint32(i*31))] = true
	}
}

func (b *bloomFilter) mightContain(item string) bool {
	for i := 0; i < b.hashes; i++ {
		if !b.bits[b.hash(item, uint32(i*31))] {
			return false
		}
	}
	return true
}
