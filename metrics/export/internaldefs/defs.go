package internaldefs

import (
	credauth "github.com/authforge/credauth"
)

// CounterDef defines a public type used by credauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   credauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by credauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   credauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the credential engine.
var CounterDefs = []CounterDef{
	{ID: credauth.MetricRegisterSuccess, Name: "credauth_register_success_total", Help: "Successful registrations."},
	{ID: credauth.MetricRegisterDuplicate, Name: "credauth_register_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: credauth.MetricRegisterFailure, Name: "credauth_register_failure_total", Help: "Failed registrations."},
	{ID: credauth.MetricProfileNotifyFailed, Name: "credauth_profile_notify_failed_total", Help: "Profile notifications that failed after registration."},
	{ID: credauth.MetricLoginSuccess, Name: "credauth_login_success_total", Help: "Successful login attempts."},
	{ID: credauth.MetricLoginFailure, Name: "credauth_login_failure_total", Help: "Failed login attempts."},
	{ID: credauth.MetricLoginLocked, Name: "credauth_login_locked_total", Help: "Login attempts rejected by an active lockout."},
	{ID: credauth.MetricLockoutTriggered, Name: "credauth_lockout_triggered_total", Help: "Failed attempts that crossed the lockout threshold."},
	{ID: credauth.MetricLockoutCleared, Name: "credauth_lockout_cleared_total", Help: "Expired lockouts cleared on evaluation."},
	{ID: credauth.MetricRefreshSuccess, Name: "credauth_refresh_success_total", Help: "Successful refresh operations."},
	{ID: credauth.MetricRefreshFailure, Name: "credauth_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: credauth.MetricValidateSuccess, Name: "credauth_validate_success_total", Help: "Successful token validations."},
	{ID: credauth.MetricValidateFailure, Name: "credauth_validate_failure_total", Help: "Failed token validations."},
	{ID: credauth.MetricStoreUnavailable, Name: "credauth_store_unavailable_total", Help: "Operations that failed against the account store."},
}

// HistogramDefs is an exported constant or variable used by the credential engine.
var HistogramDefs = []HistogramDef{
	{ID: credauth.MetricValidateLatency, Name: "credauth_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the credential engine.
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

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
