package ui

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ValidationError carries the per-field messages of a blocked
// submission. It never leaves the client.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// FormField is one field of an ApplicationForm or ProfileForm.
type FormField struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Value         any      `json:"value"`
	Required      bool     `json:"required"`
	Options       []string `json:"options"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	Step          *float64 `json:"step"`
	MaxLength     int      `json:"maxLength"`
	AcceptedTypes []string `json:"acceptedTypes"`
	MaxSize       string   `json:"maxSize"`
	Placeholder   string   `json:"placeholder"`
	HelpText      string   `json:"helpText"`
	Section       string   `json:"section"`
	PreFilled     bool     `json:"preFilled"`
	Source        string   `json:"source"`
	MinDate       string   `json:"minDate"`
	Suffix        string   `json:"suffix"`
}

// valueString renders the backend-provided value as text.
func (f *FormField) valueString() string {
	if f.Value == nil {
		return ""
	}
	switch v := f.Value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// DefaultValue is the value a field starts with before the user edits
// it.
func (f *FormField) DefaultValue() string {
	switch f.Type {
	case "yesno":
		// Anything other than an exact "no" starts on Yes.
		if f.valueString() == "no" {
			return "No"
		}
		return "Yes"
	case "select":
		v := f.valueString()
		for _, opt := range f.Options {
			if opt == v {
				return opt
			}
		}
		if len(f.Options) > 0 {
			return f.Options[0]
		}
		return ""
	case "number":
		if v := f.valueString(); v != "" {
			return v
		}
		if f.Min != nil {
			return fmt.Sprintf("%g", *f.Min)
		}
		return "0"
	case "file":
		return ""
	default:
		return f.valueString()
	}
}

// Label is the field prompt with required and pre-fill markers.
func (f *FormField) Label() string {
	label := f.Text
	if f.Required {
		label += " *"
	}
	if f.PreFilled && f.Source != "" {
		label += fmt.Sprintf(" (pre-filled from %s)", f.Source)
	}
	return label
}

// mimeExtensions maps the MIME types the backend declares on file
// fields to the extensions shown to the user.
var mimeExtensions = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/plain": "txt",
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// AcceptedExtensions resolves a file field's MIME types to extensions,
// falling back to the subtype when unmapped. Fields without declared
// types accept the original's defaults.
func (f *FormField) AcceptedExtensions() []string {
	types := f.AcceptedTypes
	if len(types) == 0 {
		return []string{"pdf", "doc", "docx"}
	}
	var exts []string
	for _, mt := range types {
		if ext, ok := mimeExtensions[mt]; ok {
			exts = append(exts, ext)
		} else if i := strings.LastIndex(mt, "/"); i >= 0 {
			exts = append(exts, mt[i+1:])
		}
	}
	return exts
}

// FileAttachment is the upload descriptor sent in form data for file
// fields.
type FileAttachment struct {
	FileName string `json:"fileName"`
	FileSize string `json:"fileSize"`
	FileType string `json:"fileType"`
	UploadID string `json:"uploadId"`
}

// AttachFile stats a local path and builds the attachment descriptor
// for a file field. The file content itself never crosses the wire;
// the backend resolves the upload id.
func AttachFile(field *FormField, sessionID, path string) (FileAttachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileAttachment{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return FileAttachment{}, fmt.Errorf("%s is a directory", path)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	accepted := field.AcceptedExtensions()
	ok := false
	for _, a := range accepted {
		if a == ext || (a == "jpg" && ext == "jpeg") {
			ok = true
			break
		}
	}
	if !ok {
		return FileAttachment{}, fmt.Errorf("accepted formats: %s", strings.ToUpper(strings.Join(accepted, ", ")))
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return FileAttachment{
		FileName: filepath.Base(path),
		FileSize: fmt.Sprintf("%dKB", info.Size()/1024),
		FileType: mimeType,
		UploadID: fmt.Sprintf("upload_%s_%s", field.ID, sessionID),
	}, nil
}

// SelectedJob identifies one job of a batch application.
type SelectedJob struct {
	JobID    string `json:"jobId"`
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
}

// ApplicationForm collects answers for one or several job
// applications. SelectedJobs non-empty means batch mode.
type ApplicationForm struct {
	Message      string        `json:"message"`
	JobID        string        `json:"jobId"`
	JobTitle     string        `json:"jobTitle"`
	Company      string        `json:"company"`
	JobTitles    []string      `json:"jobTitles"`
	Companies    []string      `json:"companies"`
	SelectedJobs []SelectedJob `json:"selectedJobs"`
	FormFields   []FormField   `json:"formFields"`
}

func (f *ApplicationForm) ComponentName() string { return "ApplicationForm" }

const dateLayout = "2006-01-02"

// ConstraintMessage checks an edited value against the field's declared
// constraints: numeric range for number fields, format and minimum for
// date fields, maxLength for free text. Empty values pass; required is
// checked separately. An empty return means the value is acceptable.
func (f *FormField) ConstraintMessage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	switch f.Type {
	case "number":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Sprintf("%s must be a number", f.Text)
		}
		switch {
		case f.Min != nil && f.Max != nil && (n < *f.Min || n > *f.Max):
			return fmt.Sprintf("%s must be between %g and %g", f.Text, *f.Min, *f.Max)
		case f.Min != nil && n < *f.Min:
			return fmt.Sprintf("%s must be at least %g", f.Text, *f.Min)
		case f.Max != nil && n > *f.Max:
			return fmt.Sprintf("%s must be at most %g", f.Text, *f.Max)
		}
	case "date":
		d, err := time.Parse(dateLayout, value)
		if err != nil {
			return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", f.Text)
		}
		if f.MinDate != "" {
			if min, err := time.Parse(dateLayout, f.MinDate); err == nil && d.Before(min) {
				return fmt.Sprintf("%s must be on or after %s", f.Text, f.MinDate)
			}
		}
	default:
		if f.MaxLength > 0 && len(value) > f.MaxLength {
			return fmt.Sprintf("%s must be %d characters or fewer", f.Text, f.MaxLength)
		}
	}
	return ""
}

// validateFields returns one message per offending field, in field
// order: missing required values first per field, then constraint
// violations on filled-in ones.
func validateFields(fields []FormField, values map[string]any) []string {
	var msgs []string
	for i := range fields {
		field := &fields[i]
		v := values[field.ID]
		if field.Type == "file" {
			if _, ok := v.(FileAttachment); !ok && field.Required {
				msgs = append(msgs, fmt.Sprintf("Please upload %s", field.Text))
			}
			continue
		}
		s, _ := v.(string)
		if strings.TrimSpace(s) == "" {
			if field.Required {
				msgs = append(msgs, fmt.Sprintf("Please fill in %s", field.Text))
			}
			continue
		}
		if msg := field.ConstraintMessage(s); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// cleanFormData normalizes collected values: nil becomes the empty
// string, attachments pass through, everything else is stringified.
func cleanFormData(fields []FormField, values map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for i := range fields {
		id := fields[i].ID
		switch v := values[id].(type) {
		case nil:
			out[id] = ""
		case FileAttachment:
			out[id] = v
		case string:
			out[id] = v
		default:
			out[id] = fmt.Sprint(v)
		}
	}
	return out
}

// BuildSubmission validates and assembles the FORM_SUBMISSION action.
// A *ValidationError blocks the submission without anything leaving
// the client.
func (f *ApplicationForm) BuildSubmission(values map[string]any) (actionType string, actionData map[string]any, err error) {
	if msgs := validateFields(f.FormFields, values); len(msgs) > 0 {
		return "", nil, &ValidationError{Messages: msgs}
	}
	data := map[string]any{"formData": cleanFormData(f.FormFields, values)}
	if len(f.SelectedJobs) > 0 {
		data["selectedJobs"] = f.SelectedJobs
	} else {
		title := f.JobTitle
		if title == "" {
			title = "Unknown Position"
		}
		company := f.Company
		if company == "" {
			company = "Unknown Company"
		}
		data["jobId"] = f.JobID
		data["jobTitle"] = title
		data["company"] = company
	}
	return "FORM_SUBMISSION", data, nil
}

// Heading describes what is being applied to.
func (f *ApplicationForm) Heading() string {
	if len(f.SelectedJobs) > 0 {
		titles := f.JobTitles
		if len(titles) == 0 {
			for _, j := range f.SelectedJobs {
				titles = append(titles, j.JobTitle)
			}
		}
		var titleText string
		switch {
		case len(titles) == 2:
			titleText = titles[0] + " and " + titles[1]
		case len(titles) > 2:
			titleText = fmt.Sprintf("%d positions", len(titles))
		case len(titles) == 1:
			titleText = titles[0]
		default:
			titleText = "Multiple Positions"
		}
		return "Combined Application for " + titleText
	}
	title := f.JobTitle
	if title == "" {
		title = "Unknown Position"
	}
	company := f.Company
	if company == "" {
		company = "Unknown Company"
	}
	return fmt.Sprintf("Application for %s at %s", title, company)
}

func (f *ApplicationForm) Render(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.Heading()) + "\n")
	msg := f.Message
	if msg == "" {
		msg = "Please complete the application form."
	}
	b.WriteString(msg + "\n")
	renderFields(&b, f.FormFields)
	b.WriteString("\n" + dimStyle.Render("tab: fill in the form • enter on last field: submit"))
	return b.String()
}

func renderFields(b *strings.Builder, fields []FormField) {
	for i := range fields {
		field := &fields[i]
		fmt.Fprintf(b, "\n  %s", fieldLabelStyle.Render(field.Label()))
		switch field.Type {
		case "yesno":
			fmt.Fprintf(b, " [Yes/No, default %s]", field.DefaultValue())
		case "select":
			fmt.Fprintf(b, " [%s]", strings.Join(field.Options, " / "))
		case "file":
			fmt.Fprintf(b, " [file: %s]", strings.ToUpper(strings.Join(field.AcceptedExtensions(), ", ")))
			if field.MaxSize != "" {
				fmt.Fprintf(b, " (max %s)", field.MaxSize)
			}
		default:
			if v := field.DefaultValue(); v != "" {
				fmt.Fprintf(b, " [%s]", v)
			}
		}
		if field.HelpText != "" {
			fmt.Fprintf(b, "\n    %s", dimStyle.Render(field.HelpText))
		}
	}
	b.WriteString("\n")
}
