package partition

// Range is a half-open [Start, End) slice of a work list
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// SplitRange divides count items into parts near-equal contiguous ranges, one
// per worker rank. The first count%parts ranges carry one extra item; ranks
// beyond count get empty ranges so every rank always has a slot.
func SplitRange(count, parts int) []Range {
	if parts < 1 {
		parts = 1
	}

	ranges := make([]Range, parts)
	base := count / parts
	extra := count % parts

	start := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges[i] = Range{Start: start, End: start + size}
		start += size
	}
	return ranges
}

// Metrics describes how evenly work is spread across ranks
type Metrics struct {
	Sizes       []int   // Items per rank
	LoadBalance float64 // 0-1 (1 = perfect balance)
}

// ComputeMetrics analyzes the balance of a set of ranges
func ComputeMetrics(ranges []Range) *Metrics {
	sizes := make([]int, len(ranges))
	total := 0
	for i, r := range ranges {
		sizes[i] = r.Len()
		total += r.Len()
	}

	balance := 1.0
	if len(ranges) > 0 && total > 0 {
		avg := float64(total) / float64(len(ranges))
		variance := 0.0
		for _, size := range sizes {
			diff := float64(size) - avg
			variance += diff * diff
		}
		variance /= float64(len(ranges))
		balance = 1.0 / (1.0 + variance/avg)
	}

	return &Metrics{
		Sizes:       sizes,
		LoadBalance: balance,
	}
}
