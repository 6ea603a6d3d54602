package document

// State is a step of a pipeline run.
type State int

const (
	Idle State = iota
	ResolvingLink
	ProbingLength
	CheckingCache
	ServingFromCache
	Fetching
	Done
	Failed
)

var stateNames = [...]string{
	Idle:             "idle",
	ResolvingLink:    "resolving link",
	ProbingLength:    "probing length",
	CheckingCache:    "checking cache",
	ServingFromCache: "serving from cache",
	Fetching:         "fetching",
	Done:             "done",
	Failed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == ServingFromCache || s == Done || s == Failed
}
