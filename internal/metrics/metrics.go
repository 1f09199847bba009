// Package metrics exposes Prometheus counters for pool activity and HTTP
// latency.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PoolKindOwned     = "owned"
	PoolKindAnonymous = "anonymous"

	JoinResultJoined        = "joined"
	JoinResultNotFound      = "not_found"
	JoinResultAlreadyJoined = "already_joined"
	JoinResultError         = "error"
)

// Recorder is what services and middleware use to report activity.
type Recorder interface {
	PoolCreated(kind string)
	PoolJoin(result string)
	CodeCollision()
	HTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus backed Recorder.
type Collector struct {
	poolsCreated   *prometheus.CounterVec
	poolJoins      *prometheus.CounterVec
	codeCollisions prometheus.Counter
	httpDuration   *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		poolsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bolao_pool_created_total",
			Help: "Pools created, by ownership kind.",
		}, []string{"kind"}),
		poolJoins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bolao_pool_join_total",
			Help: "Join attempts, by result.",
		}, []string{"result"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bolao_pool_code_collisions_total",
			Help: "Generated invite codes rejected as duplicates.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bolao_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.poolsCreated,
		c.poolJoins,
		c.codeCollisions,
		c.httpDuration,
	)

	return c
}

func (c *Collector) PoolCreated(kind string) {
	c.poolsCreated.WithLabelValues(kind).Inc()
}

func (c *Collector) PoolJoin(result string) {
	c.poolJoins.WithLabelValues(result).Inc()
}

func (c *Collector) CodeCollision() {
	c.codeCollisions.Inc()
}

func (c *Collector) HTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are disabled.
type Nop struct{}

func (Nop) PoolCreated(string)                             {}
func (Nop) PoolJoin(string)                                {}
func (Nop) CodeCollision()                                 {}
func (Nop) HTTPRequest(string, string, int, time.Duration) {}
