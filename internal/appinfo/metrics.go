package appinfo

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glow",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "glow",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	AutosaveWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glow",
		Name:      "autosave_writes_total",
		Help:      "Invitation persists from the editor, by trigger and result.",
	}, []string{"trigger", "result"})

	RSVPForwards = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glow",
		Name:      "rsvp_webhook_forwards_total",
		Help:      "RSVP webhook deliveries by result.",
	}, []string{"result"})

	SignIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glow",
		Name:      "sign_ins_total",
		Help:      "Sign-in attempts by result.",
	}, []string{"result"})
)

var registerOnce sync.Once

// RegisterMetrics wires the collectors into Registry. editSessions reports the
// number of live edit sessions and may be nil.
func RegisterMetrics(editSessions func() int) {
	registerOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			HTTPRequests,
			HTTPDuration,
			AutosaveWrites,
			RSVPForwards,
			SignIns,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "glow", Name: "invitations", Help: "Stored invitations.",
			}, func() float64 { return float64(TotalInvitations.Load()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "glow", Name: "invitation_data_bytes", Help: "Bytes of stored invitation JSON.",
			}, func() float64 { return float64(TotalDataSize.Load()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "glow", Name: "rsvps", Help: "Stored RSVP responses.",
			}, func() float64 { return float64(TotalRSVPs.Load()) }),
		)
		if editSessions != nil {
			Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "glow", Name: "edit_sessions", Help: "Live editor sessions.",
			}, func() float64 { return float64(editSessions()) }))
		}
	})
}

func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
