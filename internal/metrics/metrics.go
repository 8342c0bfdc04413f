// Package metrics holds the prometheus collectors of the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ComponentName = "events_bot"
)

var (
	// CommandUsageCounter counts how many times each command or callback action is used
	CommandUsageCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ComponentName,
			Name:      "command_usage_total",
			Help:      "Total number of times each command or callback action is used",
		},
		[]string{"command"},
	)

	// FlowResultCounter counts finished create/edit flows by outcome.
	FlowResultCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ComponentName,
			Name:      "flow_results_total",
			Help:      "Create and edit flows by mode and result",
		},
		[]string{"mode", "result"},
	)

	NavigationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ComponentName,
			Name:      "navigation_total",
			Help:      "List navigation requests by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	StoreErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ComponentName,
			Name:      "store_errors_total",
			Help:      "Event store failures by operation",
		},
		[]string{"operation"},
	)
)
