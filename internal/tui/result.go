package tui

// ResultState tracks the lifecycle of one submission. Exactly one value
// exists at a time; each submission replaces it atomically, moving
// Pending -> Success or Pending -> Failure. Success and Failure both
// accept a new submit, which moves back to Pending.
type ResultState int

const (
	// ResultEmpty is the initial state before any submission.
	ResultEmpty ResultState = iota

	// ResultPending means a request is in flight.
	ResultPending

	// ResultSuccess holds a rendered backend payload.
	ResultSuccess

	// ResultFailure holds an error display string.
	ResultFailure
)

func (s ResultState) String() string {
	switch s {
	case ResultPending:
		return "pending"
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return "empty"
	}
}

// Settled reports whether the submission cycle has finished.
func (s ResultState) Settled() bool {
	return s == ResultSuccess || s == ResultFailure
}

// pendingDisplay is the placeholder shown between submit and settlement.
const pendingDisplay = "Loading..."

// errorPrefix starts every failure display string.
const errorPrefix = "Error: "
