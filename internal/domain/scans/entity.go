package scans

import (
	"time"

	"github.com/omariomari2/wvs-102/internal/domain/findings"
)

// ID tipe untuk Scan
type ScanID string

// Status enum. Transitions are monotonic:
// pending -> running -> {completed | failed}
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Summarize recomputes counts from the final finding list. The summary is
// always derived, never tracked incrementally.
func Summarize(fs []findings.Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range fs {
		switch f.Severity {
		case findings.SeverityCritical:
			c.Critical++
		case findings.SeverityHigh:
			c.High++
		case findings.SeverityMedium:
			c.Medium++
		case findings.SeverityLow:
			c.Low++
		}
	}
	c.Total = len(fs)
	return c
}

// Aggregate Root: Result of one scan attempt against a URL.
type Result struct {
	ID           ScanID             `json:"id"`
	URL          string             `json:"url"`
	StartedAt    time.Time          `json:"startedAt"`
	Status       Status             `json:"status"`
	Findings     []findings.Finding `json:"findings"`
	Summary      SeverityCounts     `json:"summary"`
	PagesScanned int                `json:"pagesScanned"`
}
