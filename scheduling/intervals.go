package scheduling

import "sort"

// mergeIntervals sorts the given intervals and collapses overlapping or
// touching ones into a minimal set.
func mergeIntervals(intervals []Interval) []Interval {
	kept := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.IsEmpty() {
			kept = append(kept, iv)
		}
	}
	if len(kept) == 0 {
		return kept
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})

	merged := []Interval{kept[0]}
	for _, iv := range kept[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// subtractIntervals removes every busy interval from the free set and
// returns the remaining open time, sorted and non-overlapping.
func subtractIntervals(free, busy []Interval) []Interval {
	free = mergeIntervals(free)
	busy = mergeIntervals(busy)

	out := make([]Interval, 0, len(free))
	for _, f := range free {
		remaining := []Interval{f}
		for _, b := range busy {
			next := remaining[:0:0]
			for _, r := range remaining {
				if !r.Overlaps(b) {
					next = append(next, r)
					continue
				}
				if b.Start.After(r.Start) {
					next = append(next, Interval{Start: r.Start, End: b.Start})
				}
				if b.End.Before(r.End) {
					next = append(next, Interval{Start: b.End, End: r.End})
				}
			}
			remaining = next
		}
		out = append(out, remaining...)
	}
	return mergeIntervals(out)
}
