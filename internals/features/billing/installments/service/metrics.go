package service

import "github.com/prometheus/client_golang/prometheus"

var (
	plansCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "installment_plans_created_total",
		Help: "Installment plans created at the gateway, by discount presence.",
	}, []string{"discount"})

	persistenceWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "installment_persistence_warnings_total",
		Help: "Plans accepted by the gateway whose local write failed.",
	})

	webhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "installment_webhook_events_total",
		Help: "Gateway webhook events by type and outcome.",
	}, []string{"event", "outcome"})

	paymentsSynced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "installment_payments_synced_total",
		Help: "Scheduled payments upserted from the gateway.",
	})
)

func init() {
	prometheus.MustRegister(plansCreated, persistenceWarnings, webhookEvents, paymentsSynced)
}
