// Package mention detects "@" mentions in a text buffer around the caret and
// applies a picked suggestion back into the buffer.
//
// All offsets are rune offsets into the buffer.
package mention

import "unicode"

const (
	Trigger = '@'

	// MaxQueryLength bounds how far back from the caret a trigger is searched.
	MaxQueryLength = 20
)

// State is the result of a scan. The zero value means no active mention.
type State struct {
	Active        bool
	TriggerOffset int
	Query         string
}

// NoMention is returned whenever the caret is not inside a valid mention.
var NoMention = State{}

// Scan looks backward from caret for the nearest trigger and reports whether
// the caret sits inside a valid mention token.
func Scan(buffer string, caret int) State {
	runes := []rune(buffer)
	caret = clamp(caret, len(runes))

	for i := caret - 1; i >= 0 && caret-i-1 <= MaxQueryLength; i-- {
		r := runes[i]
		if r == Trigger {
			if i > 0 && !isBoundary(runes[i-1]) {
				return NoMention
			}
			return State{
				Active:        true,
				TriggerOffset: i,
				Query:         string(runes[i+1 : caret]),
			}
		}
		if unicode.IsSpace(r) {
			return NoMention
		}
	}
	return NoMention
}

// Render is the literal text inserted for a picked entity title.
func Render(title string) string {
	return string(Trigger) + title
}

// Select replaces [state.TriggerOffset, caret) with the rendered title and
// returns the new buffer and caret. A single space is appended unless the
// following character is already whitespace. An inactive state leaves the
// buffer untouched.
func Select(buffer string, state State, caret int, title string) (string, int) {
	runes := []rune(buffer)
	caret = clamp(caret, len(runes))
	if !state.Active || state.TriggerOffset < 0 || state.TriggerOffset > caret {
		return buffer, caret
	}

	insert := []rune(Render(title))
	after := runes[caret:]

	separator := []rune{}
	if len(after) == 0 || !unicode.IsSpace(after[0]) {
		separator = []rune{' '}
	}

	out := make([]rune, 0, len(runes)+len(insert)+len(separator))
	out = append(out, runes[:state.TriggerOffset]...)
	out = append(out, insert...)
	out = append(out, separator...)
	out = append(out, after...)

	return string(out), state.TriggerOffset + len(insert) + len(separator)
}

func isBoundary(r rune) bool {
	return r == ' ' || r == '\n'
}

func clamp(caret, length int) int {
	if caret < 0 {
		return 0
	}
	if caret > length {
		return length
	}
	return caret
}
