package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Advance outcomes
const (
	OutcomeAdvanced = "advanced"
	OutcomeBlocked  = "blocked"
)

// Metrics tracks wizard session transitions and invitation creation.
type Metrics struct {
	WizardsOpened      prometheus.Counter
	WizardAdvances     *prometheus.CounterVec
	WizardRetreats     prometheus.Counter
	WizardsCompleted   prometheus.Counter
	WizardsClosed      prometheus.Counter
	SessionsExpired    prometheus.Counter
	ActiveSessions     prometheus.Gauge
	InvitationsCreated prometheus.Counter
	InvitationsRevoked prometheus.Counter
}

// New registers all metrics on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WizardsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_wizards_opened_total",
			Help: "Total number of invitation wizards opened",
		}),
		WizardAdvances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mindlinks_wizard_advances_total",
			Help: "Advance attempts by step and outcome",
		}, []string{"step", "outcome"}),
		WizardRetreats: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_wizard_retreats_total",
			Help: "Total number of successful step retreats",
		}),
		WizardsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_wizards_completed_total",
			Help: "Total number of wizards completed from the review step",
		}),
		WizardsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_wizards_closed_total",
			Help: "Total number of wizards abandoned by the user",
		}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_wizard_sessions_expired_total",
			Help: "Total number of wizard sessions removed by the expiry sweep",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "mindlinks_wizard_sessions_active",
			Help: "Live wizard sessions in the session store",
		}),
		InvitationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_invitations_created_total",
			Help: "Total number of contractor invitations created",
		}),
		InvitationsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "mindlinks_invitations_revoked_total",
			Help: "Total number of contractor invitations revoked",
		}),
	}
}

// ObserveAdvance records an advance attempt from step.
func (m *Metrics) ObserveAdvance(step string, advanced bool) {
	outcome := OutcomeBlocked
	if advanced {
		outcome = OutcomeAdvanced
	}
	m.WizardAdvances.WithLabelValues(step, outcome).Inc()
}
