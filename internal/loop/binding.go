package loop

import (
	"errors"
	"fmt"

	"github.com/tomz197/kartrace/internal/input"
)

// ErrBindingConflict is returned when bindings reuse a key or bind a reserved one.
var ErrBindingConflict = errors.New("loop: conflicting key bindings")

// Binding maps one player's controls to keys.
type Binding struct {
	Left     input.Key
	Right    input.Key
	Forward  input.Key
	Backward input.Key
}

// DefaultBindings returns WASD for player 1 and the arrow keys for player 2.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Left:     input.KeyRune('a'),
			Right:    input.KeyRune('d'),
			Forward:  input.KeyRune('w'),
			Backward: input.KeyRune('s'),
		},
		{
			Left:     input.KeyLeft,
			Right:    input.KeyRight,
			Forward:  input.KeyUp,
			Backward: input.KeyDown,
		},
	}
}

// Keys returns the binding's keys in control order.
func (b Binding) Keys() [4]input.Key {
	return [4]input.Key{b.Left, b.Right, b.Forward, b.Backward}
}

// ValidateBindings checks that every key is set, escape stays free for quitting
// and no key is shared within or across bindings.
func ValidateBindings(bindings []Binding) error {
	owner := make(map[input.Key]int)
	for i, b := range bindings {
		for _, k := range b.Keys() {
			switch {
			case k == input.KeyNone:
				return fmt.Errorf("%w: player %d has an unbound control", ErrBindingConflict, i+1)
			case k == input.KeyEscape:
				return fmt.Errorf("%w: player %d binds escape", ErrBindingConflict, i+1)
			}
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("%w: key %s used by player %d and player %d", ErrBindingConflict, k, prev+1, i+1)
			}
			owner[k] = i
		}
	}
	return nil
}
