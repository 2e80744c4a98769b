package orders

// DayRevenue is one bar of the admin revenue chart.
type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Order   int64   `json:"order"`
}

// AdminStats is the /admin-state payload. Field names follow the web client.
type AdminStats struct {
	TotalUsers   int64        `json:"totalUsers"`
	TotalPlant   int64        `json:"totalPlant"`
	TotalRevenue float64      `json:"totalRevenue"`
	TotalOrder   int64        `json:"totalOrder"`
	BarChatData  []DayRevenue `json:"barChatData"`
}
