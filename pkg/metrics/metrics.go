package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AccessDecisions counts guard outcomes by caller tier, operation and
	// result (allow, forbidden, not_found, unauthenticated).
	AccessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "noteshare", Name: "access_decisions_total", Help: "Access control decisions by tier, operation and outcome."},
		[]string{"tier", "operation", "outcome"},
	)

	// UsersProvisioned counts first-time user rows created by the directory.
	UsersProvisioned = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "noteshare", Name: "users_provisioned_total", Help: "User records created on first authenticated request."},
	)

	// ProvisionConflicts counts insert races recovered by re-reading the
	// winning row. These are expected under concurrent first requests.
	ProvisionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "noteshare", Name: "provision_conflicts_total", Help: "Recovered unique-constraint races during user provisioning."},
	)

	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "noteshare", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "noteshare", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AccessDecisions)
	reg.MustRegister(UsersProvisioned)
	reg.MustRegister(ProvisionConflicts)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
