package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ha1tch/circuitsim/pkg/editor"
)

// TestFlashPhaseCalculation verifies the phase logic for message flashing
func TestFlashPhaseCalculation(t *testing.T) {
	// Flash pattern: normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
	tests := []struct {
		elapsed      int64
		wantInverted bool
		description  string
	}{
		{0, false, "start of flash - normal"},
		{124, false, "end of phase 0 - normal"},
		{125, true, "start of phase 1 - inverted"},
		{249, true, "end of phase 1 - inverted"},
		{250, false, "start of phase 2 - normal"},
		{374, false, "end of phase 2 - normal"},
		{375, true, "start of phase 3 - inverted"},
		{499, true, "end of phase 3 - inverted"},
		{500, false, "after flash period - normal"},
		{1000, false, "long after flash - normal"},
		{-1, false, "clock went backwards"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.wantInverted, shouldBeInverted(tt.elapsed), "elapsed=%d", tt.elapsed)
		})
	}
}

// TestFlashMessageTypes verifies which message types should flash
func TestFlashMessageTypes(t *testing.T) {
	tests := []struct {
		msgType     editor.MessageType
		shouldFlash bool
		description string
	}{
		{editor.MsgInfo, false, "info messages don't flash"},
		{editor.MsgError, true, "error messages flash"},
		{editor.MsgSuccess, true, "success messages flash"},
		{editor.MsgWarning, true, "warning messages flash"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.shouldFlash, shouldFlashForType(tt.msgType))
		})
	}
}

// TestInfoMessageNeverFlashes verifies MsgInfo never inverts regardless of timing
func TestInfoMessageNeverFlashes(t *testing.T) {
	for elapsed := int64(0); elapsed <= 1000; elapsed += 50 {
		inverted := shouldFlashForType(editor.MsgInfo) && shouldBeInverted(elapsed)
		assert.False(t, inverted, "elapsed=%d", elapsed)
	}
}

func TestShowMessageRestartsFlash(t *testing.T) {
	ed := newEditor(DefaultConfig(), nil)
	ed.showMessage("First error", editor.MsgError)
	first := ed.messageFlashStart
	assert.NotZero(t, first)

	ed.messageFlashStart = 0
	ed.showMessage("Second error", editor.MsgWarning)
	assert.NotZero(t, ed.messageFlashStart)
	assert.Equal(t, "Second error", ed.message)
	assert.Equal(t, editor.MsgWarning, ed.messageType)
}
