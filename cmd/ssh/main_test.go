package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)

	w, h, err := s.getSize()
	require.NoError(t, err)
	assert.Equal(t, []int{80, 24}, []int{w, h})

	s.update(200, 60)
	w, h, _ = s.getSize()
	assert.Equal(t, []int{200, 60}, []int{w, h})
}

func TestNewRaceRejectsBadConfig(t *testing.T) {
	_, err := newRace("/does/not/exist.yaml", 0, nil)
	assert.Error(t, err)
}
