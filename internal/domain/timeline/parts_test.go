package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinParts(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		parts    []string
		want     string
	}{
		{name: "no parts", fallback: "Payment", want: "Payment"},
		{name: "all blank", fallback: "Payment", parts: []string{"", "  "}, want: "Payment"},
		{name: "single part", fallback: "Payment", parts: []string{"Deposit"}, want: "Deposit"},
		{name: "keeps order", fallback: "x", parts: []string{"a", "b", "c"}, want: "a · b · c"},
		{name: "skips blanks in the middle", fallback: "x", parts: []string{"a", "", "c"}, want: "a · c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinParts(tt.fallback, tt.parts...))
		})
	}
}
