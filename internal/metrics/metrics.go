// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report to.
type Recorder interface {
	OTPRequested()
	OTPDeliveryFailed()
	LoginSucceeded(method string)
	LoginFailed(method, reason string)
	NoteCreated()
	NoteDeleted()
	HTTPResponse(method, route string, status int)
}

// Collector implements Recorder on top of Prometheus counters.
type Collector struct {
	otpRequested  prometheus.Counter
	otpDeliveryKO prometheus.Counter
	logins        *prometheus.CounterVec
	loginFailures *prometheus.CounterVec
	notesCreated  prometheus.Counter
	notesDeleted  prometheus.Counter
	httpResponses *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		otpRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteapp_otp_requested_total",
			Help: "One-time codes issued.",
		}),
		otpDeliveryKO: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteapp_otp_delivery_failed_total",
			Help: "One-time codes that could not be mailed.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteapp_login_success_total",
			Help: "Successful logins by method.",
		}, []string{"method"}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteapp_login_failure_total",
			Help: "Failed logins by method and reason.",
		}, []string{"method", "reason"}),
		notesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteapp_notes_created_total",
			Help: "Notes created.",
		}),
		notesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "noteapp_notes_deleted_total",
			Help: "Notes deleted.",
		}),
		httpResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noteapp_http_responses_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
	}

	reg.MustRegister(
		c.otpRequested,
		c.otpDeliveryKO,
		c.logins,
		c.loginFailures,
		c.notesCreated,
		c.notesDeleted,
		c.httpResponses,
	)
	return c
}

func (c *Collector) OTPRequested()      { c.otpRequested.Inc() }
func (c *Collector) OTPDeliveryFailed() { c.otpDeliveryKO.Inc() }
func (c *Collector) NoteCreated()       { c.notesCreated.Inc() }
func (c *Collector) NoteDeleted()       { c.notesDeleted.Inc() }

func (c *Collector) LoginSucceeded(method string) {
	c.logins.WithLabelValues(method).Inc()
}

func (c *Collector) LoginFailed(method, reason string) {
	c.loginFailures.WithLabelValues(method, reason).Inc()
}

func (c *Collector) HTTPResponse(method, route string, status int) {
	c.httpResponses.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, e.g. tests and tools.
type Nop struct{}

func (Nop) OTPRequested()                    {}
func (Nop) OTPDeliveryFailed()               {}
func (Nop) LoginSucceeded(string)            {}
func (Nop) LoginFailed(string, string)       {}
func (Nop) NoteCreated()                     {}
func (Nop) NoteDeleted()                     {}
func (Nop) HTTPResponse(string, string, int) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
