package editor

import (
	"time"
)

// savedMsg reports the end of a save to the store.
type savedMsg struct {
	Err error
}

// spinnerTickMsg animates the busy indicator.
type spinnerTickMsg time.Time
