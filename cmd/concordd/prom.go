package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var armStateGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "concordd",
	Subsystem:   "alarm",
	Name:        "state",
	Help:        "",
	ConstLabels: map[string]string{},
})

var openGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "concordd",
	Subsystem:   "zone",
	Name:        "open",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var troubleGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "concordd",
	Subsystem:   "zone",
	Name:        "trouble",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var eventsLostGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "concordd",
	Subsystem:   "panel",
	Name:        "events_lost",
	Help:        "",
	ConstLabels: map[string]string{},
})

var changeCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "concordd",
	Subsystem:   "panel",
	Name:        "changes_total",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"kind"})

var commandCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "concordd",
	Subsystem:   "panel",
	Name:        "commands_total",
	Help:        "",
	ConstLabels: map[string]string{},
})

var commandErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "concordd",
	Subsystem:   "panel",
	Name:        "command_errors_total",
	Help:        "",
	ConstLabels: map[string]string{},
})
