package domain

import "time"

// DocumentItem is one document entry included in a binder.
type DocumentItem struct {
	Title     string
	WordCount int
	Sections  []string
	UpdatedAt time.Time
}

// PropertyItem is one property entry included in a binder.
type PropertyItem struct {
	Name                string
	Address             string
	TotalRooms          int
	OccupiedRooms       int
	OccupancyPercent    float64
	MonthlyRevenueCents int64
	MonthlyProfitCents  int64
}

// Content is one assembled binder ready for rendering.
type Content struct {
	Title        string
	PreparedFor  string
	GeneratedAt  time.Time
	Documents    []DocumentItem
	Properties   []PropertyItem
	PageEstimate int
}
