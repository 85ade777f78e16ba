package tokens

import (
	"strings"
	"testing"
)

func TestCounter_Count(t *testing.T) {
	c := NewCounter()

	tests := []struct {
		name      string
		text      string
		minTokens int
		maxTokens int
	}{
		{"empty", "", 0, 0},
		{"short sentence", "Copper ore, open-pit mining.", 4, 12},
		{"longer prompt", strings.Repeat("Raw Material Extraction/Mining ", 50), 100, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Count(tt.text)
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("Count() = %d, want between %d and %d", got, tt.minTokens, tt.maxTokens)
			}
		})
	}
}

func TestCounter_Reuse(t *testing.T) {
	c := NewCounter()
	a, _ := c.Count("lifecycle assessment")
	b, _ := c.Count("lifecycle assessment")
	if a != b {
		t.Errorf("counts differ between calls: %d vs %d", a, b)
	}
}
