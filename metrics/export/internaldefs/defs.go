package internaldefs

import (
	"github.com/MrEthical07/campusride"
)

// CounterDef names one counter for exporters.
type CounterDef struct {
	ID   campusride.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram for exporters.
type HistogramDef struct {
	ID   campusride.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: campusride.MetricLoginSuccess, Name: "campusride_login_success_total", Help: "Logins that opened a session."},
	{ID: campusride.MetricLoginFailure, Name: "campusride_login_failure_total", Help: "Logins rejected for bad credentials."},
	{ID: campusride.MetricLoginRateLimited, Name: "campusride_login_rate_limited_total", Help: "Logins refused by the failed-login throttle."},
	{ID: campusride.MetricLoginUnverified, Name: "campusride_login_unverified_total", Help: "Correct credentials on an unverified account."},
	{ID: campusride.MetricRateLimitHit, Name: "campusride_rate_limit_hit_total", Help: "Rate-limit checks that denied requests."},
	{ID: campusride.MetricSessionCreated, Name: "campusride_session_created_total", Help: "Created sessions."},
	{ID: campusride.MetricSessionInvalidated, Name: "campusride_session_invalidated_total", Help: "Sessions ended by logout, reset or deletion."},
	{ID: campusride.MetricLogout, Name: "campusride_logout_total", Help: "Logout operations."},
	{ID: campusride.MetricCodeIssued, Name: "campusride_code_issued_total", Help: "Verification codes issued."},
	{ID: campusride.MetricCodeMismatch, Name: "campusride_code_mismatch_total", Help: "Verification codes rejected as incorrect."},
	{ID: campusride.MetricCodeExpired, Name: "campusride_code_expired_total", Help: "Verification codes submitted after expiry."},
	{ID: campusride.MetricNotificationFailure, Name: "campusride_notification_failure_total", Help: "Verification emails the notifier failed to deliver."},
	{ID: campusride.MetricRegistrationCodeSent, Name: "campusride_registration_code_sent_total", Help: "Registration codes sent."},
	{ID: campusride.MetricRegistrationSuccess, Name: "campusride_registration_success_total", Help: "Completed registrations."},
	{ID: campusride.MetricRegistrationFailure, Name: "campusride_registration_failure_total", Help: "Failed registration steps."},
	{ID: campusride.MetricRegistrationDuplicate, Name: "campusride_registration_duplicate_total", Help: "Registrations rejected for a taken username or email."},
	{ID: campusride.MetricPasswordResetRequest, Name: "campusride_password_reset_request_total", Help: "Password reset requests."},
	{ID: campusride.MetricPasswordResetSuccess, Name: "campusride_password_reset_success_total", Help: "Completed password resets."},
	{ID: campusride.MetricPasswordResetFailure, Name: "campusride_password_reset_failure_total", Help: "Failed password reset steps."},
	{ID: campusride.MetricAccountDeleteRequest, Name: "campusride_account_delete_request_total", Help: "Account deletion codes sent."},
	{ID: campusride.MetricAccountDeleted, Name: "campusride_account_deleted_total", Help: "Deleted accounts."},
	{ID: campusride.MetricAccountDeleteFailure, Name: "campusride_account_delete_failure_total", Help: "Failed account deletion steps."},
	{ID: campusride.MetricLanguageChanged, Name: "campusride_language_changed_total", Help: "Language preference changes."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: campusride.MetricAuthenticateLatency, Name: "campusride_authenticate_latency_seconds", Help: "Session token resolution latency."},
	{ID: campusride.MetricNotificationLatency, Name: "campusride_notification_latency_seconds", Help: "Verification email dispatch latency."},
}

// Source is what exporters read on every collection. *campusride.Engine
// satisfies it.
type Source interface {
	MetricsSnapshot() campusride.MetricsSnapshot
	AuditDropped() uint64
	NotificationStats() (sent, failed uint64)
}

// SourceCounterDef names a counter the engine keeps outside its metric
// registry. Source counters are exported even when metrics are disabled.
type SourceCounterDef struct {
	Name string
	Help string
	Read func(Source) uint64
}

// SourceCounterDefs lists the engine-level counters in exposition order.
var SourceCounterDefs = []SourceCounterDef{
	{
		Name: "campusride_audit_dropped_total",
		Help: "Dropped audit events due to dispatcher backpressure.",
		Read: func(s Source) uint64 { return s.AuditDropped() },
	},
	{
		Name: "campusride_notifications_sent_total",
		Help: "Verification emails handed to the mail transport.",
		Read: func(s Source) uint64 { sent, _ := s.NotificationStats(); return sent },
	},
	{
		Name: "campusride_notifications_failed_total",
		Help: "Verification emails the mail transport rejected.",
		Read: func(s Source) uint64 { _, failed := s.NotificationStats(); return failed },
	},
}

// HistogramBounds are the upper bounds, in seconds, of the eight fixed buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form usable inside metric names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// Missing trailing buckets are zero.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// Prometheus buckets are cumulative; the registry stores them per interval.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
