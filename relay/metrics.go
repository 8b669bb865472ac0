// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/saucelabs/proxyauth"
)

const (
	routeDirect = "direct"
	routeProxy  = "proxy"
)

type metrics struct {
	requests   *prometheus.CounterVec
	challenges *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer, namespace string) *metrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_requests_total",
			Help:      "Number of requests and tunnels by route",
		}, []string{"route", "kind"}),
		challenges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_auth_challenges_total",
			Help:      "Number of proxy authentication challenges by dispatch result",
		}, []string{"result"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_errors_total",
			Help:      "Number of upstream errors",
		}, []string{"reason"}),
	}
}

func (m *metrics) request(route, kind string) {
	m.requests.WithLabelValues(route, kind).Inc()
}

func (m *metrics) challenge(r proxyauth.DispatchResult) {
	m.challenges.WithLabelValues(string(r)).Inc()
}

func (m *metrics) error(reason string) {
	m.errors.WithLabelValues(reason).Inc()
}
