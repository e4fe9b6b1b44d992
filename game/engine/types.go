package engine

// Status is the outcome of PushChar or Finalize
type Status string

const (
	Accept Status = "accept"
	Reject Status = "reject"
	Done   Status = "done"
)

// State is the lifecycle position of an engine
type State string

const (
	Empty      State = "empty"
	InProgress State = "in_progress"
	Finalized  State = "finalized"
)

// candidate is an open hypothesis: the tail of dictionary word `word`
// starting at byte `offset`. offset is always < len(word).
type candidate struct {
	word   int
	offset int
}

// Snapshot is a read-only view of an engine for transports
type Snapshot struct {
	Message        string   `json:"message"`
	State          State    `json:"state"`
	AtBoundary     bool     `json:"at_boundary"`
	LegalNext      []string `json:"legal_next"`
	OpenHypotheses int      `json:"open_hypotheses"`
}
