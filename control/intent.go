// SPDX-License-Identifier: EPL-2.0

// Package control turns operator input into intents for the engine.
//
// An Intent is a discrete command. Surfaces (the keyboard and the NATS
// subscriber) only parse and forward; they hold no engine state.
package control

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownIntent = errors.New("unknown intent")

type Intent uint8

const (
	None Intent = iota
	ToggleRecord
	ToggleDelay
	MarkIn
	MarkOut
	StopLoop
	RatioUp
	RatioDown
	Gain1Down
	Gain1Up
	Gain2Down
	Gain2Up
	Quit
)

var intentNames = [...]string{
	None:         "none",
	ToggleRecord: "toggle-record",
	ToggleDelay:  "toggle-delay",
	MarkIn:       "mark-in",
	MarkOut:      "mark-out",
	StopLoop:     "stop-loop",
	RatioUp:      "ratio-up",
	RatioDown:    "ratio-down",
	Gain1Down:    "gain1-down",
	Gain1Up:      "gain1-up",
	Gain2Down:    "gain2-down",
	Gain2Up:      "gain2-up",
	Quit:         "quit",
}

var intentKeys = [...]byte{
	ToggleRecord: 'r',
	ToggleDelay:  'd',
	MarkIn:       'z',
	MarkOut:      'x',
	StopLoop:     's',
	RatioUp:      ',',
	RatioDown:    '.',
	Gain1Down:    'f',
	Gain1Up:      'g',
	Gain2Down:    'h',
	Gain2Up:      'j',
	Quit:         'q',
}

// Intents lists every actionable intent in key order.
func Intents() []Intent {
	return []Intent{
		ToggleRecord, ToggleDelay, MarkIn, MarkOut, StopLoop,
		RatioUp, RatioDown, Gain1Down, Gain1Up, Gain2Down, Gain2Up, Quit,
	}
}

func (i Intent) String() string {
	if int(i) < len(intentNames) {
		return intentNames[i]
	}
	return fmt.Sprintf("intent(%d)", uint8(i))
}

// Key is the keyboard binding for i, or 0 when it has none.
func (i Intent) Key() byte {
	if int(i) < len(intentKeys) {
		return intentKeys[i]
	}
	return 0
}

// ParseKey maps one keystroke to an intent. Letters are case-insensitive,
// '<' and '>' are accepted for ',' and '.', and Ctrl-C quits since raw
// mode swallows the signal.
func ParseKey(b byte) (Intent, bool) {
	switch b {
	case '<':
		return RatioUp, true
	case '>':
		return RatioDown, true
	case 0x03:
		return Quit, true
	}
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	for i, k := range intentKeys {
		if k != 0 && k == b {
			return Intent(i), true
		}
	}
	return None, false
}

// ParseName accepts an intent name such as "mark-in" or its single key.
func ParseName(s string) (Intent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		if i, ok := ParseKey(s[0]); ok {
			return i, nil
		}
	}
	s = strings.ReplaceAll(s, "_", "-")
	for i, name := range intentNames {
		if Intent(i) != None && name == s {
			return Intent(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}
