package domain

// CoverageTarget names an under-reviewed file a supplemental pass
// should focus on.
type CoverageTarget struct {
	Path   string    `json:"path"`
	Risk   RiskLevel `json:"risk"`
	Churn  int       `json:"churn"`
	Score  int       `json:"score"`
	Reason string    `json:"reason"`
}

// CoveragePlan is the decision record for whether a supplemental review
// pass should run, and where it should look.
type CoveragePlan struct {
	TotalChanged        int              `json:"totalChanged"`
	CoveredChanged      int              `json:"coveredChanged"`
	CoverageRatio       float64          `json:"coverageRatio"`
	FindingsOnChanged   int              `json:"findingsOnChanged"`
	MinExpectedFindings int              `json:"minExpectedFindings"`
	ShouldRun           bool             `json:"shouldRun"`
	Targets             []CoverageTarget `json:"targets"`
}
