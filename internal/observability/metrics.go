package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger and transport metrics, registered on the default registry.
var (
	// LedgerOpsTotal counts ledger operations by operation name and outcome
	// ("ok" or the rejection code).
	LedgerOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_ledger_ops_total",
		Help: "Ledger operations by operation and outcome",
	}, []string{"op", "outcome"})

	// EventsEmittedTotal counts committed ledger events by kind.
	EventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_events_emitted_total",
		Help: "Committed ledger events by kind",
	}, []string{"kind"})

	// EventFeedConnections tracks currently connected websocket feed clients.
	EventFeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_event_feed_connections",
		Help: "Currently connected event feed websocket clients",
	})

	// ContentStoreBytesTotal counts bytes written to the content store.
	ContentStoreBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_content_store_bytes_total",
		Help: "Total bytes written to the content store",
	})
)
