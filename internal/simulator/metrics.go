package simulator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// simulationsTotal counts simulations by outcome.
	simulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterbook_simulations_total",
		Help: "Total number of price simulations by result",
	}, []string{"result"}) // result: ok, error

	// campaignApplications counts quotes that carried a campaign discount.
	campaignApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterbook_campaign_applications_total",
		Help: "Total number of quotes discounted by campaign",
	}, []string{"campaign_id"})

	// droppedSelections counts selected items removed because their section is hidden.
	droppedSelections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterbook_dropped_selections_total",
		Help: "Total number of selected items dropped from hidden or inactive sections",
	})

	// simulationDuration tracks end-to-end simulation latency including catalog loads.
	simulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shutterbook_simulation_duration_seconds",
		Help:    "Time taken to load the catalog and compute a quote",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
)

func recordSimulation(start time.Time, err error) {
	simulationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		simulationsTotal.WithLabelValues("error").Inc()
		return
	}
	simulationsTotal.WithLabelValues("ok").Inc()
}
