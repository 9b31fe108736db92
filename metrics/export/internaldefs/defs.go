package internaldefs

import (
	"strconv"

	"github.com/quillpost/quillpost"
)

type CounterDef struct {
	ID   quillpost.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   quillpost.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: quillpost.MetricLoginSuccess, Name: "quillpost_login_success_total", Help: "Logins that produced a session token."},
	{ID: quillpost.MetricLoginFailure, Name: "quillpost_login_failure_total", Help: "Logins rejected for bad credentials."},
	{ID: quillpost.MetricSessionCreated, Name: "quillpost_session_created_total", Help: "Sessions written to the session store."},
	{ID: quillpost.MetricAuthAdmitted, Name: "quillpost_auth_admitted_total", Help: "Requests admitted by the auth gate."},
	{ID: quillpost.MetricAuthRejected, Name: "quillpost_auth_rejected_total", Help: "Requests rejected as unauthenticated."},
	{ID: quillpost.MetricStoreFailure, Name: "quillpost_store_failure_total", Help: "Session or user store failures."},
	{ID: quillpost.MetricLogout, Name: "quillpost_logout_total", Help: "Sessions removed by logout."},
	{ID: quillpost.MetricAccountCreated, Name: "quillpost_account_created_total", Help: "Accounts created."},
	{ID: quillpost.MetricAccountDuplicate, Name: "quillpost_account_duplicate_total", Help: "Account creations rejected for a taken login."},
	{ID: quillpost.MetricPasswordChangeSuccess, Name: "quillpost_password_change_success_total", Help: "Successful password changes."},
	{ID: quillpost.MetricPasswordChangeInvalidOld, Name: "quillpost_password_change_invalid_old_total", Help: "Password changes with a wrong old password."},
	{ID: quillpost.MetricPasswordUpgraded, Name: "quillpost_password_upgraded_total", Help: "Verifiers rewritten to the configured scheme on login."},
}

var HistogramDefs = []HistogramDef{
	{ID: quillpost.MetricAuthenticateLatency, Name: "quillpost_authenticate_latency_seconds", Help: "Token check latency."},
}

// UpperBounds returns the finite bucket bounds in seconds.
func UpperBounds() []float64 {
	out := make([]float64, len(quillpost.HistogramBounds))
	for i, ms := range quillpost.HistogramBounds {
		out[i] = float64(ms) / 1000
	}
	return out
}

// BoundLabels returns the "le" label of every bucket, "+Inf" included.
func BoundLabels() []string {
	bounds := UpperBounds()
	out := make([]string, 0, len(bounds)+1)
	for _, b := range bounds {
		out = append(out, strconv.FormatFloat(b, 'f', -1, 64))
	}
	return append(out, "+Inf")
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
