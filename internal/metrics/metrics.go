package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level counters exposed on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PlantsCreated        prometheus.Counter
	CommentsCreated      prometheus.Counter
	RemindersCreated     prometheus.Counter
	NotificationsCreated prometheus.Counter
	NotificationDispatch *prometheus.CounterVec
	CacheLookups         *prometheus.CounterVec
	NearbyLookupDuration prometheus.Histogram
}

// New registers every metric with the default registry. Call it once per
// process.
func New() *Metrics {
	return &Metrics{
		PlantsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanplant_plants_created_total",
			Help: "Total number of plant sightings created",
		}),
		CommentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanplant_comments_created_total",
			Help: "Total number of comments created",
		}),
		RemindersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanplant_reminders_created_total",
			Help: "Total number of reminders created",
		}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanplant_notifications_created_total",
			Help: "Total number of notifications persisted",
		}),
		NotificationDispatch: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scanplant_notification_dispatch_total",
			Help: "Notification dispatch attempts by outcome",
		}, []string{"outcome"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scanplant_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		}, []string{"cache", "result"}),
		NearbyLookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanplant_nearby_lookup_duration_seconds",
			Help:    "Duration of nearby plant scans",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncPlantCreated() {
	if m == nil {
		return
	}
	m.PlantsCreated.Inc()
}

func (m *Metrics) IncCommentCreated() {
	if m == nil {
		return
	}
	m.CommentsCreated.Inc()
}

func (m *Metrics) IncReminderCreated() {
	if m == nil {
		return
	}
	m.RemindersCreated.Inc()
}

func (m *Metrics) IncNotificationCreated() {
	if m == nil {
		return
	}
	m.NotificationsCreated.Inc()
}

// ObserveDispatch records one dispatch attempt as "sent" or "failed".
func (m *Metrics) ObserveDispatch(err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.NotificationDispatch.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveNearbyLookup records the duration of a nearby scan.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveNearbyLookup(start time.Time) {
	if m == nil {
		return
	}
	m.NearbyLookupDuration.Observe(time.Since(start).Seconds())
}
