package domain

import (
	"math"

	"github.com/halcyonlabs/inneros/internal/services/properties/storage"
)

// Financials holds the derived money view for one property. Amounts are
// cents; profit keeps its sign, a losing month stays negative.
type Financials struct {
	TotalRooms          int
	OccupiedRooms       int
	OccupancyPercent    float64
	MonthlyRevenueCents int64
	MonthlyProfitCents  int64
}

// ComputeFinancials derives occupancy and money figures from a property's
// rooms. A property with no rooms reports zero occupancy.
func ComputeFinancials(property storage.Property) Financials {
	fin := Financials{TotalRooms: len(property.Rooms)}
	for _, room := range property.Rooms {
		if !room.Occupied {
			continue
		}
		fin.OccupiedRooms++
		fin.MonthlyRevenueCents += room.MonthlyRentCents
	}
	if fin.TotalRooms > 0 {
		fin.OccupancyPercent = round2(float64(fin.OccupiedRooms) / float64(fin.TotalRooms) * 100)
	}
	fin.MonthlyProfitCents = fin.MonthlyRevenueCents - property.MonthlyExpensesCents
	return fin
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
