// Package monitor runs the background pass that closes open trades once
// their contract expires or their stop trigger fires.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"optionTracker/internal/domain"
	"optionTracker/internal/ports"
)

// DefaultInterval is the delay between monitor passes.
const DefaultInterval = 5 * time.Second

// StopTrigger decides whether an open trade should be closed for reasons
// other than expiration.
type StopTrigger func(ctx context.Context, trade *domain.Trade) bool

// NeverStop is the default StopTrigger.
func NeverStop(context.Context, *domain.Trade) bool { return false }

// Config holds the monitor dependencies.
type Config struct {
	Store       ports.TradeStore
	Logger      ports.Logger
	Interval    time.Duration    // Defaults to DefaultInterval
	StopTrigger StopTrigger      // Defaults to NeverStop
	Now         func() time.Time // Defaults to domain.NowEastern
}

// PassResult summarizes one monitor pass.
type PassResult struct {
	Scanned int
	Closed  int
	Skipped int   // Trades that vanished before they could be closed
	Failed  int   // Trades whose evaluation or close failed
	ScanErr error // Set when open trades could not be listed
}

// Monitor is the single background process that scans open trades.
type Monitor struct {
	store       ports.TradeStore
	logger      ports.Logger
	interval    time.Duration
	stopTrigger StopTrigger
	now         func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a monitor. It does not start it.
func New(cfg Config) (*Monitor, error) {
	if cfg.Store == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("monitor requires a store and a logger: %w", ports.ErrConfigurationError)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("monitor interval must not be negative, got %s: %w", cfg.Interval, ports.ErrConfigurationError)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.StopTrigger == nil {
		cfg.StopTrigger = NeverStop
	}
	if cfg.Now == nil {
		cfg.Now = domain.NowEastern
	}
	return &Monitor{
		store:       cfg.Store,
		logger:      cfg.Logger,
		interval:    cfg.Interval,
		stopTrigger: cfg.StopTrigger,
		now:         cfg.Now,
	}, nil
}

// Start launches the background loop bound to ctx. It returns false, and
// does nothing, when a loop is already running.
func (m *Monitor) Start(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runningLocked() {
		m.logger.Debug(ctx, "Trade monitor already running, start ignored")
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go m.run(runCtx, done)
	m.logger.Info(ctx, "Trade monitor started", map[string]interface{}{"interval": m.interval.String()})
	return true
}

// Running reports whether the background loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runningLocked()
}

func (m *Monitor) runningLocked() bool {
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Stop cancels the background loop and waits for the in-flight pass to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.safePass(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info(context.Background(), "Trade monitor stopped")
			return
		case <-ticker.C:
			m.safePass(ctx)
		}
	}
}

// safePass keeps the loop alive even if a pass panics.
func (m *Monitor) safePass(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(ctx, fmt.Errorf("panic: %v", r), "Trade monitor pass aborted")
		}
	}()
	m.RunPass(ctx)
}

// RunPass performs one scan over all open trades and closes those that are
// stop-triggered or expired. Failures are logged and isolated per trade.
func (m *Monitor) RunPass(ctx context.Context) PassResult {
	var res PassResult

	open, err := m.store.List(ctx, domain.OpenTrades())
	if err != nil {
		res.ScanErr = err
		m.logger.Error(ctx, err, "Trade monitor failed to list open trades")
		return res
	}

	now := m.now()
	for _, trade := range open {
		if ctx.Err() != nil {
			break
		}
		res.Scanned++

		reason, due, err := m.evaluate(ctx, trade, now)
		if err != nil {
			res.Failed++
			m.logger.Error(ctx, err, "Trade monitor failed to evaluate trade", map[string]interface{}{"tradeID": trade.ID})
			continue
		}
		if !due {
			continue
		}

		m.logger.Info(ctx, "Closing trade", map[string]interface{}{
			"tradeID":  trade.ID,
			"reason":   reason,
			"contract": trade.ContractLabel(),
		})
		closed, err := m.store.CloseIfOpen(ctx, trade.ID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				res.Skipped++
				m.logger.Warn(ctx, "Trade disappeared before it could be closed", map[string]interface{}{"tradeID": trade.ID})
				continue
			}
			res.Failed++
			m.logger.Error(ctx, err, "Trade monitor failed to close trade", map[string]interface{}{
				"tradeID":   trade.ID,
				"reason":    reason,
				"transient": ports.IsStorageError(err),
			})
			continue
		}
		if !closed {
			res.Skipped++
			m.logger.Debug(ctx, "Trade already closed, keeping its close time", map[string]interface{}{"tradeID": trade.ID})
			continue
		}
		res.Closed++
	}

	if res.Closed > 0 || res.Failed > 0 {
		m.logger.Debug(ctx, "Trade monitor pass finished", map[string]interface{}{
			"scanned": res.Scanned,
			"closed":  res.Closed,
			"skipped": res.Skipped,
			"failed":  res.Failed,
		})
	}
	return res
}

// evaluate checks the stop trigger first, then expiration.
func (m *Monitor) evaluate(ctx context.Context, trade *domain.Trade, now time.Time) (reason domain.CloseReason, due bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stop trigger panicked for trade ID %d: %v", trade.ID, r)
		}
	}()

	if m.stopTrigger(ctx, trade) {
		return domain.CloseReasonStopTrigger, true, nil
	}
	if domain.IsExpired(trade.ContractLabel(), now) {
		return domain.CloseReasonExpired, true, nil
	}
	return "", false, nil
}
