package domain

import "testing"

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseReceiving, "Receiving"},
		{PhaseWriting, "Writing"},
		{PhaseReadingBack, "ReadingBack"},
		{PhaseDone, "Done"},
		{Phase(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %s, want %s", tt.phase, got, tt.want)
		}
	}
}
