package domain

// RefineStats accounts for what refinement did with the raw candidates.
// Every input candidate appears in exactly one of: the refined output,
// DroppedEmpty, Deduplicated, or DroppedPerFileCap. ConvertedToSummary
// and DowngradedBlocking annotate candidates that survived.
type RefineStats struct {
	DroppedEmpty       int `json:"droppedEmpty"`
	Deduplicated       int `json:"deduplicated"`
	ConvertedToSummary int `json:"convertedToSummary"`
	DowngradedBlocking int `json:"downgradedBlocking"`
	DroppedPerFileCap  int `json:"droppedPerFileCap"`
}

// MergeStats accounts for what merging did with a supplemental pass.
type MergeStats struct {
	Added             int `json:"added"`
	DroppedDuplicates int `json:"droppedDuplicates"`
	DroppedLowValue   int `json:"droppedLowValue"`
}

// ReconcileStats summarizes how the final findings relate to findings
// posted by earlier runs on the same change.
type ReconcileStats struct {
	Matched int `json:"matched"`
	Created int `json:"created"`
}

// Report is the consolidated output of a run.
type Report struct {
	RunID          string         `json:"runId"`
	Repository     string         `json:"repository"`
	ChangeKey      string         `json:"changeKey"`
	BaseRef        string         `json:"baseRef"`
	TargetRef      string         `json:"targetRef"`
	GeneratedAt    string         `json:"generatedAt"`
	Summary        RunSummary     `json:"summary"`
	Findings       []Finding      `json:"findings"`
	Stats          RefineStats    `json:"stats"`
	Merge          *MergeStats    `json:"merge,omitempty"`
	Coverage       CoveragePlan   `json:"coverage"`
	Reconciliation ReconcileStats `json:"reconciliation"`
}
