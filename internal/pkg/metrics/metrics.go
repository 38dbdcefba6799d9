// Package metrics holds the Prometheus collectors for domain events.
// Collectors are usable before Register is called; registration only exposes
// them on /metrics.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OTPIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xenith_otp_issued_total",
		Help: "Passcodes issued, by level.",
	}, []string{"level"})

	OTPVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xenith_otp_verified_total",
		Help: "Passcode verification attempts, by level and result.",
	}, []string{"level", "result"}) // result: ok|invalid|missing|error

	KeysIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xenith_keys_issued_total",
		Help: "Level keys returned on confirmation, by level and whether they already existed.",
	}, []string{"level", "existing"})

	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registration_submissions_total",
		Help: "Registration submissions, by result.",
	}, []string{"result"}) // result: accepted|invalid|duplicate|conflict|error

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register adds every collector to reg. Collectors that are already
// registered are skipped.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{OTPIssued, OTPVerified, KeysIssued, Submissions, HTTPRequests, HTTPDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Level formats a level number as a label value.
func Level(n int) string { return strconv.Itoa(n) }
