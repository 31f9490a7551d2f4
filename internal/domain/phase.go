package domain

// Phase is the state of a connection being handled.
type Phase int

const (
	PhaseReceiving Phase = iota
	PhaseWriting
	PhaseReadingBack
	PhaseDone
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseReceiving:
		return "Receiving"
	case PhaseWriting:
		return "Writing"
	case PhaseReadingBack:
		return "ReadingBack"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}
