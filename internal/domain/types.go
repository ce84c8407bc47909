package domain

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusDeleted  = "deleted"
	FileStatusRenamed  = "renamed"
)

// Diff represents a cumulative diff between two refs.
type Diff struct {
	FromCommitHash string
	ToCommitHash   string
	Files          []FileDiff
}

// FileDiff captures the change for a single file.
type FileDiff struct {
	Path     string
	OldPath  string
	Status   string
	Patch    string
	IsBinary bool
}

// RiskLevel grades how risky a changed file is to the change as a whole.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid returns true if the risk level is a recognized value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// Rank orders risk levels for comparison. Higher is riskier.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// ChangedFile summarizes one file touched by the change under review.
// Risk is optional; when empty it is derived from churn.
type ChangedFile struct {
	Path      string    `json:"path"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Risk      RiskLevel `json:"risk"`
}

// Churn is the total number of added and deleted lines.
func (c ChangedFile) Churn() int {
	return c.Additions + c.Deletions
}
