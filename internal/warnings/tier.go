// Package warnings implements the warning ledger and the escalation tiers
// derived from a member's active warning count.
package warnings

// Tier is a severity bucket derived from the active warning count
type Tier string

const (
	TierClean     Tier = "clean"
	TierLow       Tier = "low"
	TierLowMedium Tier = "low-medium"
	TierHigh      Tier = "high"
	TierCritical  Tier = "critical"
)

const tierUnknownIdx = -1

var tierOrder = []Tier{TierClean, TierLow, TierLowMedium, TierHigh, TierCritical}

// TierFor maps an active warning count to its tier.
// 0 clean, 1 low, 2 low-medium, 3-4 high, 5+ critical.
func TierFor(n int64) Tier {
	switch {
	case n <= 0:
		return TierClean
	case n < 2:
		return TierLow
	case n < 3:
		return TierLowMedium
	case n < 5:
		return TierHigh
	default:
		return TierCritical
	}
}

func (t Tier) index() int {
	for i, v := range tierOrder {
		if v == t {
			return i
		}
	}
	return tierUnknownIdx
}

// AtLeast reports whether t is as severe as other
func (t Tier) AtLeast(other Tier) bool {
	return t.index() >= other.index() && t.index() != tierUnknownIdx
}

// Label is the risk level shown to moderators
func (t Tier) Label() string {
	switch t {
	case TierClean:
		return "Good Standing"
	case TierLow:
		return "Minimal Risk"
	case TierLowMedium:
		return "Low-Medium Risk"
	case TierHigh:
		return "Medium Risk"
	case TierCritical:
		return "High Risk"
	}
	return "Unknown"
}

// Icon is the status emoji for the tier
func (t Tier) Icon() string {
	switch t {
	case TierClean, TierLow:
		return "🟢"
	case TierLowMedium:
		return "🟡"
	case TierHigh:
		return "🟠"
	case TierCritical:
		return "🔴"
	}
	return "⚪"
}

// Color is the embed color for the tier
func (t Tier) Color() int {
	switch t {
	case TierClean:
		return 0x00FF00
	case TierLow:
		return 0xFFFF00
	case TierLowMedium:
		return 0xFFA500
	case TierHigh:
		return 0xFF6B35
	case TierCritical:
		return 0xFF0000
	}
	return 0x808080
}

// Recommendations returns the advisory follow-up for high and critical tiers.
// Lower tiers have none.
func (t Tier) Recommendations() string {
	switch t {
	case TierCritical:
		return "• Consider temporary ban or kick\n• Review user behavior pattern\n• Monitor future activity closely"
	case TierHigh:
		return "• Consider timeout/mute\n• Issue final warning\n• Monitor user activity"
	}
	return ""
}
