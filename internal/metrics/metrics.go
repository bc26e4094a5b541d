// Package metrics holds the business counters; HTTP RED metrics live in the
// transport middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homi"

var (
	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of user registrations",
		},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		},
		[]string{"status"}, // success, invalid_credentials, unverified
	)

	emailVerificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_verifications_total",
			Help:      "Total number of redeemed verification tokens",
		},
	)

	passwordResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Total number of completed password resets",
		},
	)

	mailDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_dispatch_total",
			Help:      "Account emails handed to the mailer",
		},
		[]string{"kind", "status"}, // status: sent, failed
	)

	feedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "AI feedback outcomes per entry",
		},
		[]string{"outcome"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limit policy",
		},
		[]string{"policy"},
	)

	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_health",
			Help:      "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

// Feedback outcomes.
const (
	FeedbackGenerated   = "generated"
	FeedbackFallback    = "fallback"
	FeedbackRateLimited = "rate_limited"
	FeedbackSkipped     = "skipped"
)

func RecordRegistration() { registrationsTotal.Inc() }

func RecordLogin(status string) { loginAttemptsTotal.WithLabelValues(status).Inc() }

func RecordEmailVerification() { emailVerificationsTotal.Inc() }

func RecordPasswordReset() { passwordResetsTotal.Inc() }

// RecordMail counts one dispatch attempt for kind (verify_email, password_reset).
func RecordMail(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	mailDispatchTotal.WithLabelValues(kind, status).Inc()
}

func RecordFeedback(outcome string) { feedbackTotal.WithLabelValues(outcome).Inc() }

func RecordRateLimited(policy string) { rateLimitedTotal.WithLabelValues(policy).Inc() }

// SetDependencyHealth sets the health status of a dependency
func SetDependencyHealth(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	dependencyHealth.WithLabelValues(dependency).Set(value)
}
