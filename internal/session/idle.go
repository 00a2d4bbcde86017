package session

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/kartrace/internal/input"
	"github.com/tomz197/kartrace/internal/loop"
)

// idleInput ends a race once no key has arrived for timeout.
type idleInput struct {
	loop.Input
	clock     loop.Clock
	timeout   time.Duration
	lastInput time.Time
	logger    *log.Logger
}

func newIdleInput(in loop.Input, clock loop.Clock, timeout time.Duration, logger *log.Logger) *idleInput {
	return &idleInput{
		Input:     in,
		clock:     clock,
		timeout:   timeout,
		lastInput: clock.Now(),
		logger:    logger,
	}
}

func (i *idleInput) Events() []input.Event {
	events := i.Input.Events()
	now := i.clock.Now()
	if len(events) > 0 {
		i.lastInput = now
		return events
	}
	if now.Sub(i.lastInput) > i.timeout {
		i.logger.Info("disconnecting idle player", "idle", now.Sub(i.lastInput).Round(time.Second))
		return []input.Event{{Type: input.EventQuit}}
	}
	return nil
}
