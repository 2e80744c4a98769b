package orders

import "github.com/Shazidulislam/final-project-plant-server/internal/docstore"

// Summarize turns per-day buckets into chart rows plus grand totals.
func Summarize(buckets []docstore.DayBucket) (days []DayRevenue, revenue float64, count int64) {
	days = make([]DayRevenue, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, DayRevenue{Date: b.Day, Revenue: b.Sum, Order: b.Count})
		revenue += b.Sum
		count += b.Count
	}
	return days, revenue, count
}
