package widget

import "testing"

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		f    Formatter
		in   float64
		want string
	}{
		{"plain", Plain, 0.25, "0.25"},
		{"nil is plain", Formatter(nil).orPlain(), 3, "3"},
		{"currency", Currency, 2297200.86, "$2,297,201"},
		{"count", Count, 1523, "1,523"},
		{"percent one", Percent(1), 0.057545, "5.8%"},
		{"percent two", Percent(2), 0.08, "8.00%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
