// Package expiry holds the pure rules behind the dashboard and inventory
// views: urgency buckets, the batch/product join, view selection and the
// summary figures. Nothing here does I/O; "today" is always passed in.
package expiry

type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencySafe     Urgency = "safe"
)

// Classify maps days until expiry to a bucket. Rules apply in order.
func Classify(days int, s AlertSetting) Urgency {
	switch {
	case days < 0:
		return UrgencyExpired
	case days <= s.CriticalDays:
		return UrgencyCritical
	case days <= s.WarningDays:
		return UrgencyWarning
	default:
		return UrgencySafe
	}
}

