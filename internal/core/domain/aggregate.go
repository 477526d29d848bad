package domain

import "sort"

// Aggregate accumulates per-document verdicts. The zero value is ready to use.
// Merge is a field-wise sum, so partial aggregates can be combined in any order.
type Aggregate struct {
	Total   int64
	Kept    int64
	Dropped int64
	Bytes   int64
	Reasons map[Reason]int64
}

// ReasonCount is one row of the drop-reason histogram.
type ReasonCount struct {
	Reason Reason
	Count  int64
}

// Add records one verdict. bytes is the size of the classified text.
func (a *Aggregate) Add(v Verdict, bytes int) {
	a.Total++
	a.Bytes += int64(bytes)

	if v.Keep {
		a.Kept++
		return
	}

	a.Dropped++

	if a.Reasons == nil {
		a.Reasons = make(map[Reason]int64)
	}

	a.Reasons[v.Reason]++
}

// Merge adds other into a.
func (a *Aggregate) Merge(other Aggregate) {
	a.Total += other.Total
	a.Kept += other.Kept
	a.Dropped += other.Dropped
	a.Bytes += other.Bytes

	if len(other.Reasons) == 0 {
		return
	}

	if a.Reasons == nil {
		a.Reasons = make(map[Reason]int64, len(other.Reasons))
	}

	for reason, n := range other.Reasons {
		a.Reasons[reason] += n
	}
}

// SortedReasons returns the histogram ordered by count descending, then by reason.
func (a Aggregate) SortedReasons() []ReasonCount {
	out := make([]ReasonCount, 0, len(a.Reasons))
	for reason, n := range a.Reasons {
		out = append(out, ReasonCount{Reason: reason, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Reason < out[j].Reason
	})

	return out
}
