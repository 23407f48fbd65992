package poller

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rbasoalto/terrabot/internal/config"
	"github.com/rbasoalto/terrabot/internal/storage"
	"github.com/rbasoalto/terrabot/internal/terra"
)

// SlopSeconds pads the server-reported elapsed time to absorb fetch latency
// and clock skew between the poller and the game server.
const SlopSeconds = 5

// Strategy decides whether a fresh snapshot is a notification-worthy change
// over the stored marker. Exactly one strategy is active at a time.
type Strategy interface {
	Name() string
	HasChanged(prev *storage.Game, state *terra.GameState, now time.Time) (bool, error)
}

// NewStrategy resolves a configured strategy name
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case config.StrategyServerClock:
		return &ServerClockStrategy{Slop: SlopSeconds * time.Second}, nil
	case config.StrategyLedgerLength:
		return &LedgerLengthStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown detection strategy: %q", name)
	}
}

// ServerClockStrategy derives the remote last-update time from the server's
// reported elapsed seconds and compares it against the last poll time. It
// catches in-place edits to ledger entries, at the cost of trusting the
// remote clock to be roughly in sync with ours.
type ServerClockStrategy struct {
	Slop time.Duration
}

// Name returns the configured name of the strategy
func (s *ServerClockStrategy) Name() string { return config.StrategyServerClock }

// HasChanged reports whether the game changed since the last poll
func (s *ServerClockStrategy) HasChanged(prev *storage.Game, state *terra.GameState, now time.Time) (bool, error) {
	if !prev.Polled() {
		return true, nil
	}
	elapsed, err := strconv.ParseFloat(state.Metadata.TimeSinceUpdate, 64)
	if err != nil {
		return false, fmt.Errorf("%w: bad time_since_update %q", terra.ErrMalformedSnapshot, state.Metadata.TimeSinceUpdate)
	}
	remoteUpdatedAt := now.Add(-(time.Duration(elapsed*float64(time.Second)) + s.Slop))
	return prev.LastPolledAt.Before(remoteUpdatedAt), nil
}

// LedgerLengthStrategy compares the ledger length against the stored marker.
// Known limitation: in-place edits to existing entries keep the length the
// same and go undetected.
type LedgerLengthStrategy struct{}

// Name returns the configured name of the strategy
func (s *LedgerLengthStrategy) Name() string { return config.StrategyLedgerLength }

// HasChanged reports whether the game changed since the last poll
func (s *LedgerLengthStrategy) HasChanged(prev *storage.Game, state *terra.GameState, now time.Time) (bool, error) {
	if !prev.Polled() {
		return true, nil
	}
	return len(state.Ledger) != prev.LedgerLength, nil
}
