package models

import "time"

// Reportable content types.
const (
	ContentComment  = "Comment"
	ContentBlogPost = "BlogPost"
)

// Moderation actions a dispatcher can take on a report.
const (
	ActionBan      = "ban"
	ActionRestrict = "restrict"
	ActionDelete   = "delete"
)

// ActionTaken values recorded on a settled report.
const (
	ActionTakenDelete = "Delete Content"
)

func ValidContentType(t string) bool {
	return t == ContentComment || t == ContentBlogPost
}

func ValidAction(a string) bool {
	switch a {
	case ActionBan, ActionRestrict, ActionDelete:
		return true
	}
	return false
}

// Resolution binds the action, acting moderator and timestamp of a settled
// report. It is nil while the report is open, and set whole or not at all —
// a report with some resolution fields missing is unrepresentable.
type Resolution struct {
	ActionTaken         string    `json:"action_taken"`
	DateOfAction        time.Time `json:"date_of_action"`
	RespondingModerator string    `json:"responding_moderator"`
}

type Report struct {
	ID            string      `json:"id"`
	ContentType   string      `json:"content_type"`
	ContentID     string      `json:"content_id"`
	ReportingUser string      `json:"reporting_user"`
	ReportedUser  string      `json:"reported_user"`
	Reason        string      `json:"reason"`
	ReportCreated time.Time   `json:"report_created"`
	Settled       bool        `json:"settled"`
	Resolution    *Resolution `json:"resolution,omitempty"`
}

type FileReportRequest struct {
	ContentType   string `json:"content_type"`
	ContentID     string `json:"content_id"`
	ReportingUser string `json:"reporting_user"`
	ReportedUser  string `json:"reported_user"`
	Reason        string `json:"reason"`
}

func (r *FileReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if !ValidContentType(r.ContentType) {
		errors["content_type"] = "Must be \"Comment\" or \"BlogPost\""
	}
	if r.ContentID == "" {
		errors["content_id"] = "Must provide content id"
	}
	if r.ReportingUser == "" {
		errors["reporting_user"] = "Must provide id of reporting user"
	}
	if r.ReportedUser == "" {
		errors["reported_user"] = "Must provide username of reported user"
	}
	if l := len(r.Reason); l < 1 || l > 200 {
		errors["reason"] = "Reason must be between 1 and 200 characters"
	}

	return errors
}

// ReportFilter narrows report listings. Nil/zero fields are unconstrained.
type ReportFilter struct {
	Settled             *bool
	ContentType         string
	ReportedUser        string
	ReportingUser       string
	RespondingModerator string
	CreatedAfter        time.Time
	CreatedBefore       time.Time
	ActionAfter         time.Time
	ActionBefore        time.Time
	Page                int
}

// ModerateUserRequest is the moderator console's user action. Exactly the
// fields that are set get applied.
type ModerateUserRequest struct {
	AccountStatus string
	AccountType   string
	DeleteUser    bool
}
