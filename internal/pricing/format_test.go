package pricing

import "testing"

func TestFormatYen(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{amount: 0, want: "¥0"},
		{amount: 1098, want: "¥1,098"},
		{amount: 74800, want: "¥74,800"},
		{amount: 1234567, want: "¥1,234,567"},
		{amount: -500, want: "-¥500"},
	}

	for _, tt := range tests {
		if got := FormatYen(tt.amount); got != tt.want {
			t.Errorf("FormatYen(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
