package store

import "testing"

func TestOrderPairSymmetric(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {2, 1}, {7, 7}, {100, 3}}

	for _, p := range pairs {
		lowAB, highAB := OrderPair(p[0], p[1])
		lowBA, highBA := OrderPair(p[1], p[0])
		if lowAB != lowBA || highAB != highBA {
			t.Errorf("OrderPair(%d,%d) = (%d,%d) but OrderPair(%d,%d) = (%d,%d)",
				p[0], p[1], lowAB, highAB, p[1], p[0], lowBA, highBA)
		}
		if lowAB > highAB {
			t.Errorf("OrderPair(%d,%d) returned unordered pair (%d,%d)", p[0], p[1], lowAB, highAB)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to GameStatus
		want     bool
	}{
		{StatusScheduled, StatusLive, true},
		{StatusScheduled, StatusFinal, true},
		{StatusLive, StatusFinal, true},
		{StatusFinal, StatusFinal, true},
		{StatusFinal, StatusLive, false},
		{StatusFinal, StatusScheduled, false},
		{StatusLive, StatusScheduled, false},
		{GameStatus("bogus"), StatusFinal, false},
		{StatusScheduled, GameStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseProviderStatusFailsClosed(t *testing.T) {
	tests := []struct {
		raw  string
		want GameStatus
	}{
		{"Final", StatusFinal},
		{"closed", StatusFinal},
		{"live", StatusLive},
		{"in_progress", StatusLive},
		{"Scheduled", StatusScheduled},
		{"postponed", StatusScheduled}, // unknown maps to non-final
		{"", StatusScheduled},
		{"WEIRD_STATE_7", StatusScheduled},
	}

	for _, tt := range tests {
		if got := ParseProviderStatus(tt.raw); got != tt.want {
			t.Errorf("ParseProviderStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestDecadeOf(t *testing.T) {
	tests := []struct {
		year, want int
	}{
		{2017, 2010},
		{2020, 2020},
		{1999, 1990},
		{2000, 2000},
	}

	for _, tt := range tests {
		if got := DecadeOf(tt.year); got != tt.want {
			t.Errorf("DecadeOf(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}
