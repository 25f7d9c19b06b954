package desk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// progressInterval is the number of events between progress log lines
// during ProcessEvents (spec.md §4.I).
const progressInterval = 10_000

// ProcessorMetrics is the optional set of Prometheus instruments a
// Processor reports to. A nil *ProcessorMetrics disables instrumentation
// entirely; every method is nil-receiver safe.
type ProcessorMetrics struct {
	EventsProcessed prometheus.Counter
	HandlerErrors   prometheus.Counter
	EventDuration   prometheus.Histogram
}

func (m *ProcessorMetrics) observeEvent(seconds float64) {
	if m == nil {
		return
	}
	if m.EventsProcessed != nil {
		m.EventsProcessed.Inc()
	}
	if m.EventDuration != nil {
		m.EventDuration.Observe(seconds)
	}
}

func (m *ProcessorMetrics) observeError() {
	if m == nil {
		return
	}
	if m.HandlerErrors != nil {
		m.HandlerErrors.Inc()
	}
}

// Processor is the deterministic, single-threaded driver described in
// spec.md §4.I: it holds the current [State] and an append-only list of
// [OutputRecord], dispatches each event to its handler, and fails fast on
// any unexpected error.
type Processor struct {
	runID   string
	state   State
	records []OutputRecord
	log     zerolog.Logger
	metrics *ProcessorMetrics
}

// NewProcessor builds a Processor over the given initial state. log is
// enriched with a run_id correlation field so every line it emits for this
// run can be grepped together. metrics may be nil.
func NewProcessor(initial State, log zerolog.Logger, metrics *ProcessorMetrics) *Processor {
	runID := uuid.NewString()
	return &Processor{
		runID:   runID,
		state:   initial,
		log:     log.With().Str("run_id", runID).Logger(),
		metrics: metrics,
	}
}

// RunID returns the correlation identifier assigned to this processor.
func (p *Processor) RunID() string { return p.runID }

// State returns the processor's current snapshot.
func (p *Processor) State() State { return p.state }

// OutputRecords returns every record emitted so far, in emission order.
func (p *Processor) OutputRecords() []OutputRecord { return p.records }

// ProcessEvent dispatches e to its handler. On success the processor's
// state and record list are atomically replaced; on failure the processor
// is left completely unchanged and a *HandlerError wrapping the underlying
// cause is returned, after being logged with full event context
// (spec.md §4.I, §7).
func (p *Processor) ProcessEvent(e Event) (err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = p.wrapError(e, fmt.Errorf("panic in handler: %v", r))
		}
	}()

	nextState, records, handlerErr := p.dispatch(e)
	if handlerErr != nil {
		return p.wrapError(e, handlerErr)
	}

	p.state = nextState
	p.records = append(p.records, records...)
	p.metrics.observeEvent(time.Since(started).Seconds())
	return nil
}

func (p *Processor) wrapError(e Event, cause error) error {
	wrapped := &HandlerError{
		EventKind:  e.Kind(),
		Timestamp:  formatTimestamp(e.Timestamp()),
		SequenceID: e.SequenceID(),
		Err:        cause,
	}
	p.metrics.observeError()
	p.log.Error().
		Str("event_kind", string(wrapped.EventKind)).
		Str("timestamp", wrapped.Timestamp).
		Int64("sequence_id", wrapped.SequenceID).
		Err(cause).
		Msg("handler failed")
	return wrapped
}

// dispatch routes e to its pure handler. Accounting handlers (everything
// but the lot-tracking sub-protocol) never fail on a valid event, per
// spec.md §7; the error return exists for completeness and for any future
// handler that legitimately can fail.
func (p *Processor) dispatch(e Event) (State, []OutputRecord, error) {
	switch ev := e.(type) {
	case *ClientTrade:
		s, r := handleClientTrade(p.state, ev)
		return s, r, nil
	case *MarketUpdate:
		s, r := handleMarketUpdate(p.state, ev)
		return s, r, nil
	case *ConfigUpdate:
		s, r := handleConfigUpdate(p.state, ev)
		return s, r, nil
	case *HedgeOrder:
		s, r := handleHedgeOrder(p.state, ev)
		return s, r, nil
	case *HedgeFill:
		s, r := handleHedgeFill(p.state, ev)
		return s, r, nil
	case *ClockTick:
		s, r := handleClockTick(p.state, ev)
		return s, r, nil
	default:
		return State{}, nil, fmt.Errorf("unrecognized event type %T", e)
	}
}

// ProcessEvents processes es in order, assuming it is already totally
// sorted by (timestamp, sequence_id). It logs progress every
// progressInterval events and stops at the first error (spec.md §4.I).
func (p *Processor) ProcessEvents(es []Event) error {
	start := p.state.EventCount
	for i, e := range es {
		if err := p.ProcessEvent(e); err != nil {
			return err
		}
		processed := i + 1
		if processed%progressInterval == 0 {
			p.log.Info().
				Int("processed", processed).
				Int("total", len(es)).
				Int64("event_count", p.state.EventCount).
				Msg("processing progress")
		}
	}
	p.log.Info().
		Int64("events_handled", p.state.EventCount-start).
		Int64("total_event_count", p.state.EventCount).
		Msg("run complete")
	return nil
}
