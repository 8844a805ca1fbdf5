package confirm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"prxwallet/internal/domain/model"
)

func TestTerminalConfirm(t *testing.T) {
	sum := model.Summary{
		Flow:       model.FlowTransfer,
		Amount:     "10",
		From:       model.PRX,
		Equivalent: "2.500000",
		To:         model.USDT,
		Receiver:   "PRXreceiver",
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := NewTerminal(strings.NewReader(tt.input), &out)
		got, err := c.Confirm(context.Background(), sum)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "PRXreceiver") || !strings.Contains(out.String(), "2.500000 USDT") {
			t.Errorf("summary not shown: %q", out.String())
		}
	}
}
