package analytics

import "github.com/shopspring/decimal"

// OccupancySummary is the current room occupancy.
type OccupancySummary struct {
	TotalRooms     int    `json:"totalRooms"`
	AvailableCount int    `json:"availableCount"`
	OccupiedCount  int    `json:"occupiedCount"`
	Rate           string `json:"rate"`
}

// Occupancy counts available and occupied rooms. Rooms in any other status
// (maintenance, out of order) count only towards TotalRooms.
func Occupancy(rooms []RoomRecord) OccupancySummary {
	o := OccupancySummary{TotalRooms: len(rooms), Rate: "0.0"}
	for _, r := range rooms {
		switch r.Status {
		case RoomAvailable:
			o.AvailableCount++
		case RoomOccupied:
			o.OccupiedCount++
		}
	}
	if o.TotalRooms > 0 {
		o.Rate = percent(o.OccupiedCount, o.TotalRooms)
	}
	return o
}

// KPIs are the derived hotel performance indicators. Money values are rounded
// to two decimals.
type KPIs struct {
	ADR           decimal.Decimal `json:"adr"`
	RevPAR        decimal.Decimal `json:"revpar"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
}

// ComputeKPIs derives ADR, RevPAR and average order value.
//
// The average order value covers every order regardless of status and ignores
// discounts, so it intentionally disagrees with OrderRevenue.
func ComputeKPIs(stayRevenue decimal.Decimal, bookingCount int, avgStayLength float64, totalRooms int, orders []OrderRecord) KPIs {
	k := KPIs{ADR: decimal.Zero, RevPAR: decimal.Zero, AvgOrderValue: decimal.Zero}

	if bookingCount > 0 && avgStayLength > 0 {
		roomNights := decimal.NewFromInt(int64(bookingCount)).Mul(decimal.NewFromFloat(avgStayLength))
		k.ADR = stayRevenue.Div(roomNights).Round(2)
	}
	if totalRooms > 0 {
		k.RevPAR = stayRevenue.Div(decimal.NewFromInt(int64(totalRooms))).Round(2)
	}
	if len(orders) > 0 {
		sum := decimal.Zero
		for _, o := range orders {
			sum = sum.Add(lineTotal(o))
		}
		k.AvgOrderValue = sum.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}
	return k
}
