package scan

// State is the lifecycle stage of a Scanner run.
type State int32

const (
	Idle State = iota
	Scanning
	Merging
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Merging:
		return "merging"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
