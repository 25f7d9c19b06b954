// Package desk implements a deterministic, replayable simulation engine for
// a foreign-exchange dealing desk.
//
// It consumes a totally-ordered stream of heterogeneous [Event] values
// (client trades, market-data ticks, hedge orders and fills, configuration
// changes, clock ticks) and threads them one at a time through a [Processor],
// which dispatches each to a pure handler function producing a successor
// [State] and zero or more [OutputRecord] values.
//
// The centerpiece is the risk-pair lot tracker ([LotManager]/[LotQueue]):
// client trades quoted in a cross currency pair are decomposed by
// [DecomposeTrade] into legs quoted against the reporting currency, matched
// FIFO against existing open [Lot] values to internalize offsetting flow,
// and the remainder carried forward for mark-to-market.
//
// Every operation is a pure function over an immutable [State] snapshot
// except for the lot manager, which is mutated in place and shared across
// snapshots by design (see DESIGN.md); there is no other shared mutable
// state, so a single-threaded replay is fully deterministic.
package desk
