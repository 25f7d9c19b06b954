package ioadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	desk "github.com/fxdesk/deskreplay"
)

// Event-kind tags used as input-file identifiers in configuration
// (spec.md §6).
const (
	FileKindClientTrade  = "CLIENT_TRADE"
	FileKindMarketUpdate = "MARKET_UPDATE"
	FileKindConfigUpdate = "CONFIG_UPDATE"
	FileKindHedgeOrder   = "HEDGE_ORDER"
	FileKindHedgeFill    = "HEDGE_FILL"
	FileKindClockTick    = "CLOCK_TICK"
)

// Merger loads every configured input file, concatenates the events they
// contain, and totally orders the result by (timestamp, sequence_id)
// before handing it to the processor (spec.md §4.J).
type Merger struct {
	directory string
	files     map[string]string
}

// NewMerger builds a Merger rooted at directory, reading the filename for
// each event-kind tag from files.
func NewMerger(directory string, files map[string]string) *Merger {
	return &Merger{directory: directory, files: files}
}

func (m *Merger) open(kind string) (*os.File, bool, error) {
	name, ok := m.files[kind]
	if !ok || name == "" {
		return nil, false, nil
	}
	f, err := os.Open(filepath.Join(m.directory, name))
	if err != nil {
		return nil, true, fmt.Errorf("open %s input %q: %w", kind, name, err)
	}
	return f, true, nil
}

// Load reads every configured input file and returns the fully merged,
// totally-ordered event stream.
func (m *Merger) Load() ([]desk.Event, error) {
	var events []desk.Event

	if f, present, err := m.open(FileKindClientTrade); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		trades, err := ReadClientTrades(f)
		if err != nil {
			return nil, fmt.Errorf("read client trades: %w", err)
		}
		for _, t := range trades {
			events = append(events, t)
		}
	}

	if f, present, err := m.open(FileKindMarketUpdate); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		updates, err := ReadMarketUpdates(f)
		if err != nil {
			return nil, fmt.Errorf("read market updates: %w", err)
		}
		for _, u := range updates {
			events = append(events, u)
		}
	}

	if f, present, err := m.open(FileKindConfigUpdate); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		updates, err := ReadConfigUpdates(f)
		if err != nil {
			return nil, fmt.Errorf("read config updates: %w", err)
		}
		for _, u := range updates {
			events = append(events, u)
		}
	}

	if f, present, err := m.open(FileKindHedgeOrder); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		orders, err := ReadHedgeOrders(f)
		if err != nil {
			return nil, fmt.Errorf("read hedge orders: %w", err)
		}
		for _, o := range orders {
			events = append(events, o)
		}
	}

	if f, present, err := m.open(FileKindHedgeFill); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		fills, err := ReadHedgeFills(f)
		if err != nil {
			return nil, fmt.Errorf("read hedge fills: %w", err)
		}
		for _, fl := range fills {
			events = append(events, fl)
		}
	}

	if f, present, err := m.open(FileKindClockTick); err != nil {
		return nil, err
	} else if present {
		defer f.Close()
		ticks, err := ReadClockTicks(f)
		if err != nil {
			return nil, fmt.Errorf("read clock ticks: %w", err)
		}
		for _, t := range ticks {
			events = append(events, t)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return desk.CompareEvents(events[i], events[j]) < 0
	})

	return events, nil
}
