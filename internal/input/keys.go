package input

import (
	"fmt"
	"strings"
)

// Key identifies a physical key the race understands.
type Key uint8

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
	KeyEnter
	KeySpace
	keyLetterBase // first letter, 'a'
)

// keyCount is the number of distinct keys (specials plus a-z and 0-9).
const keyCount = int(keyLetterBase) + 26 + 10

var specialNames = map[Key]string{
	KeyUp:     "up",
	KeyDown:   "down",
	KeyLeft:   "left",
	KeyRight:  "right",
	KeyEscape: "escape",
	KeyEnter:  "enter",
	KeySpace:  "space",
}

// KeyRune maps a letter or digit to its key. Other runes map to KeyNone.
func KeyRune(r rune) Key {
	switch {
	case r >= 'a' && r <= 'z':
		return keyLetterBase + Key(r-'a')
	case r >= 'A' && r <= 'Z':
		return keyLetterBase + Key(r-'A')
	case r >= '0' && r <= '9':
		return keyLetterBase + 26 + Key(r-'0')
	case r == ' ':
		return KeySpace
	}
	return KeyNone
}

// String returns the key's config name.
func (k Key) String() string {
	if name, ok := specialNames[k]; ok {
		return name
	}
	switch {
	case k >= keyLetterBase && k < keyLetterBase+26:
		return string(rune('a' + k - keyLetterBase))
	case k >= keyLetterBase+26 && int(k) < keyCount:
		return string(rune('0' + k - keyLetterBase - 26))
	}
	return "none"
}

// ParseKey resolves a config name ("w", "up", "escape", ...) to a key.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range specialNames {
		if n == name {
			return k, nil
		}
	}
	if r := []rune(name); len(r) == 1 {
		if k := KeyRune(r[0]); k != KeyNone {
			return k, nil
		}
	}
	return KeyNone, fmt.Errorf("input: unknown key %q", name)
}

// KeySet is an immutable snapshot of held keys.
type KeySet struct {
	held [keyCount]bool
}

// NewKeySet returns a snapshot with the given keys held.
func NewKeySet(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		if int(k) < keyCount {
			s.held[k] = true
		}
	}
	return s
}

// Held reports whether k was held when the snapshot was taken.
func (s KeySet) Held(k Key) bool {
	return k != KeyNone && int(k) < keyCount && s.held[k]
}

// EventType identifies an input event.
type EventType int

const (
	EventKeyDown EventType = iota
	EventQuit              // Window/session closed or interrupt
)

// Event is a discrete input event drained once per frame.
type Event struct {
	Type EventType
	Key  Key
}
