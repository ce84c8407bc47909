package domain

// FileSummary is the per-file portion of a run summary.
type FileSummary struct {
	Path    string    `json:"path"`
	Summary string    `json:"summary"`
	Risk    RiskLevel `json:"risk"`
}

// RunSummary is the change-level narrative a review pass produces
// alongside its findings.
type RunSummary struct {
	Risk        RiskLevel     `json:"risk"`
	Confidence  Confidence    `json:"confidence"`
	KeyConcerns []string      `json:"keyConcerns"`
	WhatToTest  []string      `json:"whatToTest"`
	Files       []FileSummary `json:"files"`
}
