package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TcellSource reads key events from a tcell screen.
type TcellSource struct {
	screen tcell.Screen
	ch     chan tcell.Event
	done   chan struct{}
	stop   sync.Once
	keys   tracker
	now    func() time.Time
	closed bool
}

// StartTcell spawns a goroutine polling screen events. The goroutine ends when
// the screen is finalised or Close is called. hold <= 0 selects
// DefaultHoldDuration.
func StartTcell(screen tcell.Screen, hold time.Duration) *TcellSource {
	s := &TcellSource{
		screen: screen,
		ch:     make(chan tcell.Event, 128),
		done:   make(chan struct{}),
		keys:   newTracker(hold),
		now:    time.Now,
	}
	go func() {
		defer close(s.ch)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case s.ch <- ev:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Close stops the polling goroutine once its pending poll returns. It is safe
// to call more than once.
func (s *TcellSource) Close() {
	s.stop.Do(func() { close(s.done) })
}

// Events drains pending screen events without blocking.
func (s *TcellSource) Events() []Event {
	now := s.now()
	var events []Event

drain:
	for !s.closed {
		select {
		case ev, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				k, quit := mapTcellKey(ev.Key(), ev.Rune())
				if quit {
					events = append(events, Event{Type: EventQuit})
					continue
				}
				if k != KeyNone {
					s.keys.press(k, now)
					events = append(events, Event{Type: EventKeyDown, Key: k})
				}
			case *tcell.EventResize:
				s.screen.Sync()
			}
		default:
			break drain
		}
	}

	if s.closed {
		events = append(events, Event{Type: EventQuit})
	}
	return events
}

// State returns the held keys at this instant.
func (s *TcellSource) State() KeySet {
	return s.keys.snapshot(s.now())
}

// mapTcellKey converts a tcell key to ours. quit is true for Ctrl-C.
func mapTcellKey(k tcell.Key, r rune) (key Key, quit bool) {
	switch k {
	case tcell.KeyCtrlC:
		return KeyNone, true
	case tcell.KeyUp:
		return KeyUp, false
	case tcell.KeyDown:
		return KeyDown, false
	case tcell.KeyLeft:
		return KeyLeft, false
	case tcell.KeyRight:
		return KeyRight, false
	case tcell.KeyEscape:
		return KeyEscape, false
	case tcell.KeyEnter:
		return KeyEnter, false
	case tcell.KeyRune:
		return KeyRune(r), false
	}
	return KeyNone, false
}
