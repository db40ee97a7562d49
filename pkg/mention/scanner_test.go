package mention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name   string
		buffer string
		caret  int
		want   State
	}{
		{
			name:   "bare trigger at start",
			buffer: "@",
			caret:  1,
			want:   State{Active: true, TriggerOffset: 0, Query: ""},
		},
		{
			name:   "trigger after space",
			buffer: "hello @no",
			caret:  9,
			want:   State{Active: true, TriggerOffset: 6, Query: "no"},
		},
		{
			name:   "trigger after newline",
			buffer: "line\n@abc",
			caret:  9,
			want:   State{Active: true, TriggerOffset: 5, Query: "abc"},
		},
		{
			name:   "caret inside token",
			buffer: "@abc def",
			caret:  2,
			want:   State{Active: true, TriggerOffset: 0, Query: "a"},
		},
		{
			name:   "email address",
			buffer: "user@x",
			caret:  6,
			want:   NoMention,
		},
		{
			name:   "whitespace between trigger and caret",
			buffer: "hi @foo bar",
			caret:  11,
			want:   NoMention,
		},
		{
			name:   "no trigger",
			buffer: "plain text",
			caret:  10,
			want:   NoMention,
		},
		{
			name:   "caret before trigger",
			buffer: "ab @cd",
			caret:  2,
			want:   NoMention,
		},
		{
			name:   "query at length limit",
			buffer: "@" + strings.Repeat("a", MaxQueryLength),
			caret:  MaxQueryLength + 1,
			want:   State{Active: true, TriggerOffset: 0, Query: strings.Repeat("a", MaxQueryLength)},
		},
		{
			name:   "query over length limit",
			buffer: "@" + strings.Repeat("a", MaxQueryLength+1),
			caret:  MaxQueryLength + 2,
			want:   NoMention,
		},
		{
			name:   "caret beyond buffer is clamped",
			buffer: "x @ab",
			caret:  99,
			want:   State{Active: true, TriggerOffset: 2, Query: "ab"},
		},
		{
			name:   "negative caret",
			buffer: "@ab",
			caret:  -3,
			want:   NoMention,
		},
		{
			name:   "multibyte runes",
			buffer: "héllo @né",
			caret:  9,
			want:   State{Active: true, TriggerOffset: 6, Query: "né"},
		},
		{
			name:   "nearest trigger wins",
			buffer: "@a@b",
			caret:  4,
			want:   NoMention,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scan(tt.buffer, tt.caret))
		})
	}
}

func TestScanMidWordTriggerNeverActivates(t *testing.T) {
	buffers := []string{"user@x", "user@xyz and more", "a@b\nc", "foo@@bar"}
	for _, buffer := range buffers {
		runes := []rune(buffer)
		at := strings.IndexRune(buffer, '@')
		for caret := at + 1; caret <= len(runes); caret++ {
			state := Scan(buffer, caret)
			if state.Active {
				assert.NotEqual(t, at, state.TriggerOffset, "buffer %q caret %d", buffer, caret)
			}
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		buffer     string
		caret      int
		title      string
		wantBuffer string
		wantCaret  int
	}{
		{
			name:       "end of buffer gets a separator",
			buffer:     "hi @no",
			caret:      6,
			title:      "Notes",
			wantBuffer: "hi @Notes ",
			wantCaret:  10,
		},
		{
			name:       "following space is reused",
			buffer:     "hi @no world",
			caret:      6,
			title:      "Notes",
			wantBuffer: "hi @Notes world",
			wantCaret:  9,
		},
		{
			name:       "following punctuation gets a separator",
			buffer:     "hi @no, ok",
			caret:      6,
			title:      "Notes",
			wantBuffer: "hi @Notes , ok",
			wantCaret:  10,
		},
		{
			name:       "title with spaces",
			buffer:     "@me",
			caret:      3,
			title:      "Meeting Notes",
			wantBuffer: "@Meeting Notes ",
			wantCaret:  15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Scan(tt.buffer, tt.caret)
			assert.True(t, state.Active)

			buffer, caret := Select(tt.buffer, state, tt.caret, tt.title)
			assert.Equal(t, tt.wantBuffer, buffer)
			assert.Equal(t, tt.wantCaret, caret)

			sep := caret - state.TriggerOffset - len([]rune(Render(tt.title)))
			assert.True(t, sep == 0 || sep == 1)
			if sep == 1 {
				assert.False(t, Scan(buffer, caret).Active)
			}
		})
	}
}

func TestSelectInactiveStateIsNoop(t *testing.T) {
	buffer, caret := Select("user@x", NoMention, 6, "Notes")
	assert.Equal(t, "user@x", buffer)
	assert.Equal(t, 6, caret)
}
