package models

import "math"

// Unlimited marks a limit with no ceiling.
const Unlimited int64 = -1

// TierLimits is the static per-plan quota configuration. The values are
// compile-time constants, never persisted.
type TierLimits struct {
	MaxPolicies         int64 `json:"max_policies"`
	MaxOcrScans         int64 `json:"max_ocr_scans"`
	MaxStorageBytes     int64 `json:"max_storage_bytes"`
	BackupFrequencyDays int   `json:"backup_frequency_days"`
}

var (
	FreeTierLimits = TierLimits{
		MaxPolicies:         25,
		MaxOcrScans:         50,
		MaxStorageBytes:     100 * 1024 * 1024, // 100MB
		BackupFrequencyDays: 7,
	}

	ProTierLimits = TierLimits{
		MaxPolicies:         Unlimited,
		MaxOcrScans:         Unlimited,
		MaxStorageBytes:     5 * 1024 * 1024 * 1024, // 5GB
		BackupFrequencyDays: 1,
	}
)

// LimitsForTier resolves the quota set for the subscription state.
func LimitsForTier(subscribed bool) TierLimits {
	if subscribed {
		return ProTierLimits
	}
	return FreeTierLimits
}

// WithinLimit reports whether used is still below max, honoring the
// Unlimited sentinel.
func WithinLimit(used, max int64) bool {
	if max == Unlimited {
		return true
	}
	return used < max
}

// GetUsagePercentage returns 0 for unlimited quotas and otherwise the
// rounded percentage clamped to 100.
func GetUsagePercentage(used, max int64) int {
	if max == Unlimited || max <= 0 {
		return 0
	}
	pct := int(math.Round(float64(used) / float64(max) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}
