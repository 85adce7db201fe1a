package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr error
	}{
		{
			name: "bare object",
			raw:  `{"action": "START_EMI"}`,
			want: map[string]any{"action": "START_EMI"},
		},
		{
			name: "fenced with prose",
			raw:  "Sure! Here you go:\n```json\n{\"principal\": 500000, \"rate\": null}\n```\nAnything else?",
			want: map[string]any{"principal": 500000.0, "rate": nil},
		},
		{
			name:    "no braces",
			raw:     "I cannot help with that.",
			wantErr: ErrNoJSON,
		},
		{
			name:    "reversed braces",
			raw:     "} nope {",
			wantErr: ErrNoJSON,
		},
		{
			name:    "broken json",
			raw:     `{"principal": 5,}`,
			wantErr: ErrBadJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeObject(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
