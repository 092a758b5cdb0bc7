package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics ตัวนับของระบบแบบประเมิน ใช้ registry แยกจาก default
type Metrics struct {
	Registry *prometheus.Registry

	responses      *prometheus.CounterVec
	scorePercent   prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	jobsProcessed  *prometheus.CounterVec
	surveyMutation *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacp",
			Name:      "survey_responses_total",
			Help:      "Survey responses by lifecycle event.",
		}, []string{"event"}),
		scorePercent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gacp",
			Name:      "survey_score_percentage",
			Help:      "Score percentage of completed responses.",
			Buckets:   []float64{40, 60, 70, 75, 80, 90, 100},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacp",
			Name:      "survey_cache_lookups_total",
			Help:      "Survey definition cache lookups by result.",
		}, []string{"result"}),
		jobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacp",
			Name:      "jobs_processed_total",
			Help:      "Background tasks processed by type and outcome.",
		}, []string{"type", "outcome"}),
		surveyMutation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacp",
			Name:      "survey_mutations_total",
			Help:      "Survey definition changes by action.",
		}, []string{"action"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.responses,
		m.scorePercent,
		m.cacheLookups,
		m.jobsProcessed,
		m.surveyMutation,
	)
	return m
}

// ทุก method รับ receiver เป็น nil ได้ เพื่อให้ test ไม่ต้องสร้าง Metrics

func (m *Metrics) ResponseEvent(event string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveScore(percentage float64) {
	if m == nil {
		return
	}
	m.scorePercent.Observe(percentage)
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) JobProcessed(taskType string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobsProcessed.WithLabelValues(taskType, outcome).Inc()
}

func (m *Metrics) SurveyMutation(action string) {
	if m == nil {
		return
	}
	m.surveyMutation.WithLabelValues(action).Inc()
}

// Handler endpoint /metrics สำหรับ Fiber
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
