// Package metrics defines and registers the custom Prometheus metrics of the
// user-accounts API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts accounts created through public registration or
// administrative creation.
// Label:
//   - source: "register" or "admin"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user accounts created, by source.",
	},
	[]string{"source"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "unverified", "locked"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts locked after too many failed logins.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts locked after repeated failed logins.",
	},
)

// VerificationsTotal counts completed email verifications.
var VerificationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_verifications_total",
		Help:      "Total number of email addresses verified.",
	},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsSentTotal counts outgoing emails.
// Labels:
//   - kind: the email kind (e.g. "verification_email", "account_locked")
//   - result: "sent" or "failed"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of emails handed to the SMTP server, by kind and result.",
	},
	[]string{"kind", "result"},
)

// MailQueueDepth tracks the number of emails waiting in each outbox worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each outbox worker channel.",
	},
	[]string{"worker_id"},
)

// EmailDeliveryDuration measures how long rendering and sending one email takes.
// Label:
//   - kind: the email kind
var EmailDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_delivery_duration_seconds",
		Help:      "Duration of email rendering and SMTP delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
