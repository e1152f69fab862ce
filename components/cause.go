package components

// Cause records why an agent left the active set.
type Cause uint8

const (
	CauseNone      Cause = iota // still flying
	CauseCollision              // hit a pipe (penalized)
	CauseBounds                 // left the playfield vertically
	CauseFault                  // decision function failed
)

// String returns the cause name used in logs and telemetry.
func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseCollision:
		return "collision"
	case CauseBounds:
		return "bounds"
	case CauseFault:
		return "fault"
	default:
		return "unknown"
	}
}
