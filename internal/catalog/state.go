package catalog

// State is the catalog lifecycle state.
type State int

// Lifecycle: Empty -> Building -> Ready; Ready -> Loading -> Ready; any -> Failed.
const (
	StateEmpty State = iota
	StateBuilding
	StateReady
	StateLoading
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
