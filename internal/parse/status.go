package parse

import (
	"regexp"
	"strings"

	"hotel-analytics-backend/internal/analytics"
)

var separatorRe = regexp.MustCompile(`[\s\-]+`)

// canonical lowercases a label and folds spaces and dashes into underscores,
// so "Checked In", "checked-in" and "CHECKED_IN" compare equal.
func canonical(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return separatorRe.ReplaceAllString(s, "_")
}

// NormalizeStayStatus maps a free-form booking status onto the canonical set.
// Unknown labels are kept (canonicalised) so they remain visible in the data
// but fall outside every status bucket.
func NormalizeStayStatus(raw string) analytics.StayStatus {
	switch s := canonical(raw); s {
	case "confirmed", "booked", "reserved":
		return analytics.StayConfirmed
	case "checked_in", "checkedin", "in_house":
		return analytics.StayCheckedIn
	case "checked_out", "checkedout", "completed":
		return analytics.StayCheckedOut
	case "cancelled", "canceled":
		return analytics.StayCancelled
	default:
		return analytics.StayStatus(s)
	}
}

// NormalizePaymentStatus maps payment labels onto paid/pending.
func NormalizePaymentStatus(raw string) analytics.PaymentStatus {
	switch s := canonical(raw); s {
	case "paid", "settled", "completed":
		return analytics.PaymentPaid
	case "pending", "unpaid", "awaiting_payment":
		return analytics.PaymentPending
	default:
		return analytics.PaymentStatus(s)
	}
}

// NormalizeOrderStatus maps order labels onto the canonical set.
func NormalizeOrderStatus(raw string) analytics.OrderStatus {
	switch s := canonical(raw); s {
	case "paid":
		return analytics.OrderPaid
	case "pending", "new", "placed":
		return analytics.OrderPending
	case "ready", "served":
		return analytics.OrderReady
	case "cancelled", "canceled", "void":
		return analytics.OrderCancelled
	default:
		return analytics.OrderStatus(s)
	}
}

// NormalizeRoomStatus maps room labels onto available/occupied. Everything
// else (cleaning, out of order, ...) is reported as maintenance.
func NormalizeRoomStatus(raw string) analytics.RoomStatus {
	switch canonical(raw) {
	case "available", "vacant", "free", "clean":
		return analytics.RoomAvailable
	case "occupied", "in_use", "booked":
		return analytics.RoomOccupied
	default:
		return analytics.RoomMaintenance
	}
}
