package docstore

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// Point is one document reduced to its creation time and the value summed.
type Point struct {
	CreatedAt time.Time
	Value     any
}

// GroupByDay buckets points by UTC calendar day. Non-numeric values add 0
// to the sum but still count. Buckets come back sorted by day.
func GroupByDay(points []Point) []DayBucket {
	idx := map[string]int{}
	var out []DayBucket
	for _, p := range points {
		day := p.CreatedAt.UTC().Format(dayLayout)
		i, ok := idx[day]
		if !ok {
			i = len(out)
			idx[day] = i
			out = append(out, DayBucket{Day: day})
		}
		if f, ok := p.Value.(float64); ok {
			out[i].Sum += f
		}
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
