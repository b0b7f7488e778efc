package ui

import (
	"fmt"
	"strings"
)

// NextAction is a follow-up button on a success component. Rather than
// sending the raw action, it resolves to a plain text prompt so the
// conversation stays the source of truth.
type NextAction struct {
	Label      string `json:"label"`
	ActionType string `json:"actionType"`
	Enabled    *bool  `json:"enabled"`
}

func (a *NextAction) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// QuickReply maps a next-action type to the text input it stands for.
// Unknown action types have no reply and render as inert.
func (a *NextAction) QuickReply() (string, bool) {
	switch a.ActionType {
	case "SEARCH_JOBS", "SEARCH_SIMILAR_JOBS":
		return "find me jobs", true
	case "UPDATE_PROFILE_AGAIN", "EDIT_PROFILE":
		return "update my profile", true
	}
	return "", false
}

// NextStep is one entry of an application success timeline.
type NextStep struct {
	Step         string `json:"step"`
	Description  string `json:"description"`
	ExpectedTime string `json:"expectedTime"`
}

// ContactInfo accompanies an application confirmation.
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ApplicationSuccess confirms submitted applications, single or batch.
type ApplicationSuccess struct {
	Message           string        `json:"message"`
	SelectedJobs      []SelectedJob `json:"selectedJobs"`
	JobCount          float64       `json:"jobCount"`
	ApplicationIDs    []string      `json:"applicationIds"`
	JobTitle          string        `json:"jobTitle"`
	Company           string        `json:"company"`
	ApplicationID     string        `json:"applicationId"`
	NextSteps         []NextStep    `json:"nextSteps"`
	ContactInfo       *ContactInfo  `json:"contactInfo"`
	AdditionalActions []NextAction  `json:"additionalActions"`
}

func (s *ApplicationSuccess) ComponentName() string { return "ApplicationSuccess" }

// Actions are the follow-up buttons, enabled ones only.
func (s *ApplicationSuccess) Actions() []NextAction {
	return enabledActions(s.AdditionalActions)
}

func (s *ApplicationSuccess) Render(width int) string {
	var b strings.Builder
	msg := s.Message
	if msg == "" {
		msg = "Application submitted!"
	}
	b.WriteString(successStyle.Render("✓ "+msg) + "\n")

	if len(s.SelectedJobs) > 0 {
		count := int(s.JobCount)
		if count == 0 {
			count = len(s.SelectedJobs)
		}
		fmt.Fprintf(&b, "Number of applications: %d\n", count)
		for i, job := range s.SelectedJobs {
			id := "N/A"
			if i < len(s.ApplicationIDs) {
				id = s.ApplicationIDs[i]
			}
			fmt.Fprintf(&b, "  • %s at %s (ID: %s)\n", job.JobTitle, job.Company, id)
		}
	} else {
		title := s.JobTitle
		if title == "" {
			title = "Unknown Position"
		}
		company := s.Company
		if company == "" {
			company = "Unknown Company"
		}
		id := s.ApplicationID
		if id == "" {
			id = "N/A"
		}
		fmt.Fprintf(&b, "Position: %s\nCompany: %s\nApplication ID: %s\n", title, company, id)
	}

	if len(s.NextSteps) > 0 {
		b.WriteString("\nWhat happens next:\n")
		for i, step := range s.NextSteps {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, step.Step, step.ExpectedTime)
			if step.Description != "" {
				fmt.Fprintf(&b, "     %s\n", step.Description)
			}
		}
	}
	if s.ContactInfo != nil && (s.ContactInfo.Email != "" || s.ContactInfo.Phone != "") {
		b.WriteString("\nContact:\n")
		if s.ContactInfo.Email != "" {
			fmt.Fprintf(&b, "  Email: %s\n", s.ContactInfo.Email)
		}
		if s.ContactInfo.Phone != "" {
			fmt.Fprintf(&b, "  Phone: %s\n", s.ContactInfo.Phone)
		}
	}
	renderActionHints(&b, s.Actions())
	return strings.TrimRight(b.String(), "\n")
}

// ProfileSuccess confirms an applied profile update.
type ProfileSuccess struct {
	Message       string       `json:"message"`
	UpdatedFields []string     `json:"updatedFields"`
	UpdatedCount  float64      `json:"updatedCount"`
	NextActions   []NextAction `json:"nextActions"`
}

func (s *ProfileSuccess) ComponentName() string { return "ProfileSuccess" }

func (s *ProfileSuccess) Actions() []NextAction {
	return enabledActions(s.NextActions)
}

func (s *ProfileSuccess) Render(width int) string {
	var b strings.Builder
	msg := s.Message
	if msg == "" {
		msg = "Profile updated successfully!"
	}
	b.WriteString(successStyle.Render("✓ "+msg) + "\n")
	count := int(s.UpdatedCount)
	if count == 0 {
		count = len(s.UpdatedFields)
	}
	fmt.Fprintf(&b, "Fields updated: %d\n", count)
	for _, field := range s.UpdatedFields {
		fmt.Fprintf(&b, "  ✓ %s\n", field)
	}
	renderActionHints(&b, s.Actions())
	return strings.TrimRight(b.String(), "\n")
}

func enabledActions(actions []NextAction) []NextAction {
	var out []NextAction
	for _, a := range actions {
		if a.IsEnabled() {
			out = append(out, a)
		}
	}
	return out
}

func renderActionHints(b *strings.Builder, actions []NextAction) {
	if len(actions) == 0 {
		return
	}
	b.WriteString("\nWhat would you like to do next?\n")
	for i, a := range actions {
		fmt.Fprintf(b, "  [%d] %s\n", i+1, a.Label)
	}
}
