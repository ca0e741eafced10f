package bundle

type State int32

const (
	StateStart State = iota
	StateDestPrepared
	StateLinesFiltered
	StateLinesProcessed
	StateConfigWritten
	StateLauncherWritten
	StateDone
	// StateFailed is entered from any state when a step returns an error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateDestPrepared:
		return "dest-prepared"
	case StateLinesFiltered:
		return "lines-filtered"
	case StateLinesProcessed:
		return "lines-processed"
	case StateConfigWritten:
		return "config-written"
	case StateLauncherWritten:
		return "launcher-written"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "<invalid state>"
	}
}
