package input

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNow is a controllable clock for hold-duration checks.
type fakeNow struct{ t time.Time }

func newFakeNow() *fakeNow { return &fakeNow{t: time.Unix(1000, 0)} }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func keysOf(events []Event) []Key {
	var out []Key
	for _, e := range events {
		if e.Type == EventKeyDown {
			out = append(out, e.Key)
		}
	}
	return out
}

func quitsOf(events []Event) int {
	n := 0
	for _, e := range events {
		if e.Type == EventQuit {
			n++
		}
	}
	return n
}

func newTestStream(clock *fakeNow, hold time.Duration) *Stream {
	return &Stream{ch: make(chan byte, 64), done: make(chan struct{}), keys: newTracker(hold), now: clock.now}
}

func push(s *Stream, data string) {
	for i := 0; i < len(data); i++ {
		s.ch <- data[i]
	}
}

func TestStreamParsesKeys(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []Key
	}{
		{"letters", "wAsd", []Key{KeyRune('w'), KeyRune('a'), KeyRune('s'), KeyRune('d')}},
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{KeyUp, KeyDown, KeyRight, KeyLeft}},
		{"application mode arrows", "\x1bOA", []Key{KeyUp}},
		{"lone escape", "\x1b", []Key{KeyEscape}},
		{"modified arrow", "\x1b[1;2C", []Key{KeyRight}},
		{"unknown sequence skipped", "\x1b[15~w", []Key{KeyRune('w')}},
		{"enter", "\r", []Key{KeyEnter}},
		{"ignored bytes", "\x01\x7f", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream(newFakeNow(), 0)
			push(s, tt.data)
			events := s.Events()
			events = append(events, s.Events()...) // flushes a trailing ESC
			assert.Equal(t, tt.want, keysOf(events))
		})
	}
}

func TestStreamJoinsSequencesAcrossDrains(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   [][]Key
	}{
		{"escape then bracket and final", []string{"\x1b", "[A"}, [][]Key{nil, {KeyUp}}},
		{"bracket then final", []string{"\x1b[", "D"}, [][]Key{nil, {KeyLeft}}},
		{"application mode", []string{"\x1bO", "B"}, [][]Key{nil, {KeyDown}}},
		{"parameters then final", []string{"\x1b[1;", "2C"}, [][]Key{nil, {KeyRight}}},
		{"one byte per drain", []string{"\x1b", "[", "A"}, [][]Key{nil, nil, {KeyUp}}},
		{"keys before the cut", []string{"w\x1b", "[Bs"}, [][]Key{{KeyRune('w')}, {KeyDown, KeyRune('s')}}},
		{"escape then a plain key", []string{"\x1b", "w"}, [][]Key{nil, {KeyEscape, KeyRune('w')}}},
		{"lone escape after an idle drain", []string{"\x1b", ""}, [][]Key{nil, {KeyEscape}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream(newFakeNow(), time.Second)
			for i, chunk := range tt.chunks {
				push(s, chunk)
				assert.Equal(t, tt.want[i], keysOf(s.Events()), "drain %d", i)
			}
			assert.False(t, s.State().Held(KeyRune('a')), "sequence bytes never reach player keys")
			assert.False(t, s.State().Held(KeyRune('d')))
		})
	}
}

func TestStreamSplitArrowDoesNotQuit(t *testing.T) {
	s := newTestStream(newFakeNow(), time.Second)

	push(s, "\x1b")
	first := s.Events()
	push(s, "[A")
	second := s.Events()

	assert.Empty(t, first)
	assert.Equal(t, []Key{KeyUp}, keysOf(second))
	assert.True(t, s.State().Held(KeyUp))
	assert.False(t, s.State().Held(KeyEscape))
}

func TestStreamDropsUnfinishedSequenceWhenIdle(t *testing.T) {
	s := newTestStream(newFakeNow(), time.Second)

	push(s, "\x1b[1;")
	assert.Empty(t, s.Events())
	assert.Empty(t, s.Events(), "no final byte arrived")

	push(s, "w")
	assert.Equal(t, []Key{KeyRune('w')}, keysOf(s.Events()))
}

func TestStreamBoundsPendingSequence(t *testing.T) {
	s := newTestStream(newFakeNow(), time.Second)

	push(s, "\x1b["+strings.Repeat("1", maxPendingSequence))
	assert.Empty(t, s.Events())
	assert.Empty(t, s.pending, "an overlong fragment is not carried over")
}

// endlessReader returns the same byte forever.
type endlessReader struct{ b byte }

func (r endlessReader) ReadByte() (byte, error) { return r.b, nil }
func (r endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
	}
	return len(p), nil
}

func TestStreamCloseStopsBlockedReader(t *testing.T) {
	s := StartStream(endlessReader{b: 'w'}, time.Second)

	// Let the reader fill the channel buffer and block on the next send.
	require.Eventually(t, func() bool { return len(s.ch) == cap(s.ch) }, time.Second, time.Millisecond)

	s.Close()
	s.Close()

	var events []Event
	require.Eventually(t, func() bool {
		events = append(events, s.Events()...)
		return quitsOf(events) > 0
	}, time.Second, time.Millisecond)
}

func TestStreamCtrlCQuits(t *testing.T) {
	s := newTestStream(newFakeNow(), 0)
	push(s, "w\x03")
	events := s.Events()
	assert.Equal(t, 1, quitsOf(events))
	assert.Equal(t, []Key{KeyRune('w')}, keysOf(events))
}

func TestStreamClosedReaderQuits(t *testing.T) {
	s := StartStream(strings.NewReader("a"), time.Second)

	var events []Event
	require.Eventually(t, func() bool {
		events = append(events, s.Events()...)
		return quitsOf(events) > 0
	}, time.Second, time.Millisecond)

	assert.Equal(t, []Key{KeyRune('a')}, keysOf(events))
	assert.Equal(t, 1, quitsOf(s.Events()), "a closed stream keeps reporting quit")
}

func TestStreamHeldStateExpires(t *testing.T) {
	clock := newFakeNow()
	s := newTestStream(clock, 50*time.Millisecond)

	push(s, "w\x1b[A")
	s.Events()
	state := s.State()
	assert.True(t, state.Held(KeyRune('w')))
	assert.True(t, state.Held(KeyUp))
	assert.False(t, state.Held(KeyRune('s')))

	clock.advance(30 * time.Millisecond)
	push(s, "w") // auto-repeat keeps w held
	s.Events()

	clock.advance(30 * time.Millisecond)
	state = s.State()
	assert.True(t, state.Held(KeyRune('w')))
	assert.False(t, state.Held(KeyUp), "no repeat arrived for up")

	clock.advance(time.Second)
	assert.False(t, s.State().Held(KeyRune('w')))
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"w", KeyRune('w')},
		{" W ", KeyRune('w')},
		{"up", KeyUp},
		{"LEFT", KeyLeft},
		{"escape", KeyEscape},
		{"7", KeyRune('7')},
		{"space", KeySpace},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	for _, bad := range []string{"", "ctrl", "!", "ab"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestKeyStringRoundTrip(t *testing.T) {
	for k := KeyUp; int(k) < keyCount; k++ {
		name := k.String()
		got, err := ParseKey(name)
		require.NoError(t, err, "key %d (%s)", k, name)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "none", KeyNone.String())
}

func TestKeySet(t *testing.T) {
	s := NewKeySet(KeyUp, KeyRune('a'), Key(250))
	assert.True(t, s.Held(KeyUp))
	assert.True(t, s.Held(KeyRune('a')))
	assert.False(t, s.Held(KeyDown))
	assert.False(t, s.Held(KeyNone))
	assert.False(t, s.Held(Key(250)))
}

func TestMapTcellKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want Key
		quit bool
	}{
		{tcell.KeyUp, 0, KeyUp, false},
		{tcell.KeyDown, 0, KeyDown, false},
		{tcell.KeyLeft, 0, KeyLeft, false},
		{tcell.KeyRight, 0, KeyRight, false},
		{tcell.KeyEscape, 0, KeyEscape, false},
		{tcell.KeyEnter, 0, KeyEnter, false},
		{tcell.KeyRune, 'D', KeyRune('d'), false},
		{tcell.KeyCtrlC, 0, KeyNone, true},
		{tcell.KeyF1, 0, KeyNone, false},
	}
	for _, tt := range tests {
		got, quit := mapTcellKey(tt.key, tt.r)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.quit, quit)
	}
}

// pollScreen feeds scripted events to TcellSource.
type pollScreen struct {
	tcell.Screen
	events chan tcell.Event
	syncs  chan struct{}
}

func (p *pollScreen) PollEvent() tcell.Event {
	ev, ok := <-p.events
	if !ok {
		return nil
	}
	return ev
}

func (p *pollScreen) Sync() { p.syncs <- struct{}{} }

func TestTcellSourceResizeAndClose(t *testing.T) {
	screen := &pollScreen{events: make(chan tcell.Event, 4), syncs: make(chan struct{}, 4)}
	src := StartTcell(screen, 0)

	screen.events <- tcell.NewEventResize(100, 40)
	close(screen.events)

	var events []Event
	require.Eventually(t, func() bool {
		events = append(events, src.Events()...)
		return quitsOf(events) > 0
	}, time.Second, time.Millisecond)

	assert.Len(t, screen.syncs, 1, "resize syncs the screen")
	assert.False(t, src.State().Held(KeyUp))
}

// busyScreen reports a key press on every poll.
type busyScreen struct{ tcell.Screen }

func (busyScreen) PollEvent() tcell.Event {
	return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
}

func TestTcellSourceCloseStopsBlockedPoller(t *testing.T) {
	src := StartTcell(busyScreen{}, 0)

	require.Eventually(t, func() bool { return len(src.ch) == cap(src.ch) }, time.Second, time.Millisecond)

	src.Close()

	var events []Event
	require.Eventually(t, func() bool {
		events = append(events, src.Events()...)
		return quitsOf(events) > 0
	}, time.Second, time.Millisecond)
	assert.Contains(t, keysOf(events), KeyUp)
}
