package ui

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoChanges aborts a profile submission whose edits all match the
// rendered values. It is informational, not a failure.
var ErrNoChanges = errors.New("no changes detected")

// ProfileForm collects profile edits grouped into named sections. Only
// changed fields are submitted.
type ProfileForm struct {
	Message    string            `json:"message"`
	Sections   map[string]string `json:"sections"`
	FormFields []FormField       `json:"formFields"`

	originals map[string]string
}

func (f *ProfileForm) ComponentName() string { return "ProfileForm" }

func (f *ProfileForm) captureOriginals() {
	f.originals = make(map[string]string, len(f.FormFields))
	for i := range f.FormFields {
		f.originals[f.FormFields[i].ID] = f.FormFields[i].valueString()
	}
}

// SectionTitle resolves a section key through the display-name map.
func (f *ProfileForm) SectionTitle(key string) string {
	if title, ok := f.Sections[key]; ok {
		return title
	}
	if key == "" {
		return "General"
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// FieldsBySection groups fields preserving field order within each
// section; the returned keys preserve first-appearance order. Fields
// without a section land in "general".
func (f *ProfileForm) FieldsBySection() ([]string, map[string][]FormField) {
	var order []string
	grouped := map[string][]FormField{}
	for i := range f.FormFields {
		section := f.FormFields[i].Section
		if section == "" {
			section = "general"
		}
		if _, seen := grouped[section]; !seen {
			order = append(order, section)
		}
		grouped[section] = append(grouped[section], f.FormFields[i])
	}
	return order, grouped
}

// Diff compares edited values against the values captured at render,
// trimmed. Unchanged fields are omitted; a field cleared from a
// non-empty original is sent as an explicit empty string so the
// backend clears it.
func (f *ProfileForm) Diff(values map[string]string) map[string]string {
	changed := map[string]string{}
	for i := range f.FormFields {
		id := f.FormFields[i].ID
		original := strings.TrimSpace(f.originals[id])
		edited := strings.TrimSpace(values[id])
		if original == edited {
			continue
		}
		if edited != "" {
			changed[id] = edited
		} else if original != "" {
			changed[id] = ""
		}
	}
	return changed
}

// BuildSubmission validates, diffs, and assembles the
// PROFILE_FORM_SUBMISSION action. ErrNoChanges means nothing differed
// and nothing should be sent.
func (f *ProfileForm) BuildSubmission(values map[string]string) (actionType string, actionData map[string]any, err error) {
	var msgs []string
	for i := range f.FormFields {
		field := &f.FormFields[i]
		v := values[field.ID]
		if strings.TrimSpace(v) == "" {
			if field.Required {
				msgs = append(msgs, fmt.Sprintf("Please fill in %s", field.Text))
			}
			continue
		}
		if msg := field.ConstraintMessage(v); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) > 0 {
		return "", nil, &ValidationError{Messages: msgs}
	}
	changed := f.Diff(values)
	if len(changed) == 0 {
		return "", nil, ErrNoChanges
	}
	return "PROFILE_FORM_SUBMISSION", map[string]any{"formData": changed}, nil
}

func (f *ProfileForm) Render(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Update Your Profile") + "\n")
	msg := f.Message
	if msg == "" {
		msg = "Please update your profile information."
	}
	b.WriteString(msg + "\n")
	order, grouped := f.FieldsBySection()
	for _, section := range order {
		fmt.Fprintf(&b, "\n%s\n", sectionStyle.Render(f.SectionTitle(section)))
		renderFields(&b, grouped[section])
	}
	b.WriteString("\n" + dimStyle.Render("tab: edit the form • only changed fields are sent"))
	return b.String()
}
