package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Ticker is anything advanced once per simulation step.
type Ticker interface {
	Tick(dt float64)
}

// Loop drives a Ticker at a fixed rate. It implements Service: Start
// blocks until Stop is called.
type Loop struct {
	ticker Ticker
	rate   int
	logger *zap.Logger
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewLoop creates a loop stepping ticker at rate ticks per second.
//
// Precondition: ticker is non-nil; 1 <= rate <= 240.
func NewLoop(ticker Ticker, rate int, logger *zap.Logger) (*Loop, error) {
	if ticker == nil {
		return nil, fmt.Errorf("sim: ticker must not be nil")
	}
	if rate < 1 || rate > 240 {
		return nil, fmt.Errorf("sim: tick rate must be 1-240, got %d", rate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		ticker: ticker,
		rate:   rate,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start runs the loop until Stop is called. The step passed to the
// Ticker is the fixed nominal step, not wall-clock elapsed time;
// placement logic stays deterministic under scheduler jitter.
func (l *Loop) Start() error {
	defer close(l.doneCh)

	step := time.Second / time.Duration(l.rate)
	dt := step.Seconds()
	l.logger.Info("simulation loop running",
		zap.Int("tick_rate", l.rate),
		zap.Duration("step", step),
	)

	t := time.NewTicker(step)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			l.logger.Info("simulation loop stopped")
			return nil
		case <-t.C:
			l.ticker.Tick(dt)
		}
	}
}

// Stop signals the loop to exit and waits for the current tick to
// finish. Safe to call only once.
func (l *Loop) Stop() {
	close(l.stopCh)
	<-l.doneCh
}
