package loop

import "time"

// Frame timing.
const (
	TargetFPS     = 60
	FrameInterval = time.Second / TargetFPS
)

// Player limits.
const (
	MinPlayers = 1
	MaxPlayers = 2
)
