package utils

import "testing"

func TestMinutes(t *testing.T) {
	if got := Minutes(5); got != 300 {
		t.Errorf("Minutes(5) = %d, want 300", got)
	}
}

func TestUnitsCompose(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 72, -4} {
		if Hours(n) != 60*Minutes(n) {
			t.Errorf("Hours(%d) = %d, want %d", n, Hours(n), 60*Minutes(n))
		}
		if Days(n) != 24*Hours(n) {
			t.Errorf("Days(%d) = %d, want %d", n, Days(n), 24*Hours(n))
		}
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"hours(2) is minutes(120)", Hours(2), Minutes(120)},
		{"days(3) is hours(72)", Days(3), Hours(72)},
		{"a week", Days(7), 604800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}
