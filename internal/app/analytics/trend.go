package analytics

// bucketSet collects evaluated marks per CIE bucket.
type bucketSet map[CieType][]float64

func (b bucketSet) add(t CieType, m MarkRecord) {
	if !m.HasMarks() {
		return
	}
	b[t] = append(b[t], *m.Marks)
}

func (b bucketSet) averages() CieAverages {
	avgs := newCieAverages()
	for _, t := range CieTypes {
		if values := b[t]; len(values) > 0 {
			avgs[t] = round1(mean(values))
		}
	}
	return avgs
}

// ComputeCieTrend averages marks per CIE bucket using the lenient label matching of
// NormalizeCieType. Records whose label matches no bucket are ignored.
func ComputeCieTrend(marks []MarkRecord) CieAverages {
	buckets := make(bucketSet)
	for _, m := range marks {
		if t, ok := NormalizeCieType(m.CIEType); ok {
			buckets.add(t, m)
		}
	}
	return buckets.averages()
}

// ComputeSubjectTrendExact is the strict variant used for a single subject's stats: only
// records labelled exactly CIE1..CIE5 (ignoring case and surrounding space) are counted.
func ComputeSubjectTrendExact(marks []MarkRecord) CieAverages {
	buckets := make(bucketSet)
	for _, m := range marks {
		if t, ok := exactCieType(m.CIEType); ok {
			buckets.add(t, m)
		}
	}
	return buckets.averages()
}
