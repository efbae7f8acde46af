package model

import "time"

// ReportReason classifies why a supervisor was reported.
type ReportReason string

const (
	ReasonInappropriateConduct ReportReason = "inappropriate_conduct"
	ReasonFalseInformation     ReportReason = "false_information"
	ReasonFraud                ReportReason = "fraud"
	ReasonOther                ReportReason = "other"
)

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Closing reports whether s is a status an open report can move to.
func (s ReportStatus) Closing() bool {
	return s == ReportResolved || s == ReportDismissed
}

// Report is a user's complaint about a supervisor profile.
type Report struct {
	ID           string       `json:"id"`
	ReporterID   string       `json:"reporter_id"`
	SupervisorID string       `json:"supervisor_id"`
	Reason       ReportReason `json:"reason"`
	Details      string       `json:"details,omitempty"`
	Status       ReportStatus `json:"status"`
	AdminNote    string       `json:"admin_note,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
}
