package orders

import (
	"sort"
	"time"
)

// MonthStats aggregates one calendar month.
type MonthStats struct {
	Month   string `json:"month"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// Statistics is a recomputed summary of all orders.
type Statistics struct {
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      int64          `json:"totalRevenue"`
	AverageOrderValue int64          `json:"averageOrderValue"`
	ByStatus          map[Status]int `json:"byStatus"`
	ByMonth           []MonthStats   `json:"byMonth"`
	ThisMonth         MonthStats     `json:"thisMonth"`
	LastMonth         MonthStats     `json:"lastMonth"`
	// RevenueGrowth is the percent change from last month; zero when last
	// month had no revenue.
	RevenueGrowth float64 `json:"revenueGrowth"`
}

// monthLayout formats calendar month keys.
const monthLayout = "2006-01"

// ComputeStatistics partitions orders by calendar month (in now's
// location) and by status. Revenue excludes cancelled orders.
func ComputeStatistics(all []Order, now time.Time) Statistics {
	stats := Statistics{ByStatus: make(map[Status]int, len(Statuses)), ByMonth: []MonthStats{}}
	for _, status := range Statuses {
		stats.ByStatus[status] = 0
	}

	loc := now.Location()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	thisKey := thisMonthStart.Format(monthLayout)
	lastKey := thisMonthStart.AddDate(0, -1, 0).Format(monthLayout)

	months := map[string]*MonthStats{}
	paying := 0
	for _, o := range all {
		stats.TotalOrders++
		stats.ByStatus[o.Status]++

		key := o.CreatedAt.In(loc).Format(monthLayout)
		month, ok := months[key]
		if !ok {
			month = &MonthStats{Month: key}
			months[key] = month
		}
		month.Orders++
		if o.Status == StatusCancelled {
			continue
		}
		paying++
		stats.TotalRevenue += o.Total
		month.Revenue += o.Total
	}

	for _, month := range months {
		stats.ByMonth = append(stats.ByMonth, *month)
	}
	sort.Slice(stats.ByMonth, func(i, j int) bool { return stats.ByMonth[i].Month < stats.ByMonth[j].Month })

	stats.ThisMonth = MonthStats{Month: thisKey}
	if month, ok := months[thisKey]; ok {
		stats.ThisMonth = *month
	}
	stats.LastMonth = MonthStats{Month: lastKey}
	if month, ok := months[lastKey]; ok {
		stats.LastMonth = *month
	}
	if paying > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / int64(paying)
	}
	if stats.LastMonth.Revenue > 0 {
		delta := float64(stats.ThisMonth.Revenue - stats.LastMonth.Revenue)
		stats.RevenueGrowth = delta / float64(stats.LastMonth.Revenue) * 100
	}
	return stats
}
