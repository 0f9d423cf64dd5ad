package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics exposes the sale engine's application-level instruments.
type Metrics struct {
	SalesCreated      prometheus.Counter
	SalesCompleted    prometheus.Counter
	SalesCancelled    prometheus.Counter
	InsufficientStock prometheus.Counter
	SequenceConflicts prometheus.Counter
}

// NewRegistry builds the registry every instrument registers against.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// New registers the domain counters.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		SalesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescore_sales_created_total",
			Help: "Sales created.",
		}),
		SalesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescore_sales_completed_total",
			Help: "Sales completed.",
		}),
		SalesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescore_sales_cancelled_total",
			Help: "Sales cancelled with stock restitution.",
		}),
		InsufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescore_insufficient_stock_total",
			Help: "Sale creations rejected for insufficient stock.",
		}),
		SequenceConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salescore_sequence_conflicts_total",
			Help: "Sale number allocation conflicts that triggered a retry.",
		}),
	}
	reg.MustRegister(
		m.SalesCreated,
		m.SalesCompleted,
		m.SalesCancelled,
		m.InsufficientStock,
		m.SequenceConflicts,
	)
	return m
}

// Module wires the prometheus registry and domain instruments.
var Module = fx.Module("metrics",
	fx.Provide(NewRegistry),
	fx.Provide(New),
)
