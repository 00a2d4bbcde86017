// Package input turns terminal key presses into per-frame events and held-key snapshots.
package input

import (
	"bufio"
	"io"
	"sync"
	"time"
)

// DefaultHoldDuration is how long a key is considered "held" after its last press.
// Terminals report presses and auto-repeats but no releases, so a key stays held
// while repeats keep arriving inside this window.
const DefaultHoldDuration = 80 * time.Millisecond

// tracker tracks the last time each key was pressed.
type tracker struct {
	last [keyCount]time.Time
	hold time.Duration
}

func newTracker(hold time.Duration) tracker {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return tracker{hold: hold}
}

func (t *tracker) press(k Key, now time.Time) {
	if k != KeyNone && int(k) < keyCount {
		t.last[k] = now
	}
}

// snapshot builds the held-key set: keys are held if seen within the hold duration.
func (t *tracker) snapshot(now time.Time) KeySet {
	var s KeySet
	for k, at := range t.last {
		if !at.IsZero() && now.Sub(at) < t.hold {
			s.held[k] = true
		}
	}
	return s
}

// maxPendingSequence bounds the bytes kept between drains while an escape
// sequence is still arriving.
const maxPendingSequence = 16

// Stream delivers input bytes from a raw terminal or SSH session via a channel
// and tracks key state so simultaneous keys can be detected.
type Stream struct {
	ch      chan byte
	done    chan struct{}
	stop    sync.Once
	pending []byte // unfinished escape sequence from the previous drain
	keys    tracker
	now     func() time.Time
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The goroutine ends when r fails or Close is called. hold <= 0 selects
// DefaultHoldDuration.
func StartStream(r io.Reader, hold time.Duration) *Stream {
	s := &Stream{
		ch:   make(chan byte, 128),
		done: make(chan struct{}),
		keys: newTracker(hold),
		now:  time.Now,
	}
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	go func() {
		defer close(s.ch)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Close stops the reader goroutine once its pending read returns. It is safe
// to call more than once.
func (s *Stream) Close() {
	s.stop.Do(func() { close(s.done) })
}

// Events drains all available bytes from the stream (non-blocking) and returns
// the key presses they encode. Arrow-key escape sequences become arrow keys, a
// lone ESC is the escape key, Ctrl-C and a closed reader become EventQuit.
//
// A sequence cut off at the end of a drain is held back until the next one. A
// trailing ESC becomes the escape key only when the following drain brings
// nothing new.
func (s *Stream) Events() []Event {
	now := s.now()
	buf := s.pending
	s.pending = nil
	fresh := 0

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
			fresh++
		default:
			break drain
		}
	}

	events := s.parse(buf, now, fresh == 0 || s.closed)
	if s.closed {
		events = append(events, Event{Type: EventQuit})
	}
	return events
}

// State returns the held keys at this instant.
func (s *Stream) State() KeySet {
	return s.keys.snapshot(s.now())
}

// parse decodes the collected bytes and updates key state timestamps. Unless
// flush is set, an unfinished escape sequence at the end of buf is kept in
// s.pending instead of being decoded.
func (s *Stream) parse(buf []byte, now time.Time, flush bool) []Event {
	var events []Event
	press := func(k Key) {
		if k == KeyNone {
			return
		}
		s.keys.press(k, now)
		events = append(events, Event{Type: EventKeyDown, Key: k})
	}
	keep := func(rest []byte) bool {
		if flush || len(rest) > maxPendingSequence {
			return false
		}
		s.pending = append([]byte(nil), rest...)
		return true
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			if i+1 == len(buf) {
				if keep(buf[i:]) {
					return events
				}
				press(KeyEscape)
				continue
			}
			// CSI (ESC [) or SS3 (ESC O) sequence
			if buf[i+1] == '[' || buf[i+1] == 'O' {
				end := i + 2
				for end < len(buf) && (buf[end] < 0x40 || buf[end] > 0x7e) {
					end++
				}
				if end == len(buf) {
					// No final byte: wait for it, or drop the fragment.
					keep(buf[i:])
					return events
				}
				press(arrowKey(buf[end]))
				i = end
				continue
			}
			press(KeyEscape)
			continue
		}

		switch b {
		case 0x03: // Ctrl-C
			events = append(events, Event{Type: EventQuit})
		case '\r', '\n':
			press(KeyEnter)
		default:
			press(KeyRune(rune(b)))
		}
	}
	return events
}

func arrowKey(final byte) Key {
	switch final {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return KeyNone
}
