package ui

import (
	"errors"
	"testing"
)

func TestFieldDefaults(t *testing.T) {
	t.Run("Yesno", func(t *testing.T) {
		cases := []struct {
			value any
			want  string
		}{
			{"yes", "Yes"},
			{"no", "No"},
			{"maybe", "Yes"},
			{nil, "Yes"},
		}
		for _, tc := range cases {
			f := FormField{Type: "yesno", Value: tc.value}
			if got := f.DefaultValue(); got != tc.want {
				t.Errorf("value %v: got %q, want %q", tc.value, got, tc.want)
			}
		}
	})

	t.Run("Select Matches Or First", func(t *testing.T) {
		opts := []string{"Remote", "Hybrid", "Onsite"}
		f := FormField{Type: "select", Value: "Hybrid", Options: opts}
		if got := f.DefaultValue(); got != "Hybrid" {
			t.Errorf("got %q, want Hybrid", got)
		}
		f.Value = "Underwater"
		if got := f.DefaultValue(); got != "Remote" {
			t.Errorf("got %q, want first option", got)
		}
		f.Options = nil
		if got := f.DefaultValue(); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("Number Falls Back To Min", func(t *testing.T) {
		min := 5.0
		f := FormField{Type: "number", Min: &min}
		if got := f.DefaultValue(); got != "5" {
			t.Errorf("got %q, want 5", got)
		}
		f.Value = float64(42)
		if got := f.DefaultValue(); got != "42" {
			t.Errorf("got %q, want 42", got)
		}
	})
}

func TestFieldConstraints(t *testing.T) {
	min, max := 0.0, 40.0
	hours := FormField{ID: "hours", Text: "Hours", Type: "number", Min: &min, Max: &max}
	start := FormField{ID: "start", Text: "Start Date", Type: "date", MinDate: "2026-01-01"}
	nick := FormField{ID: "nick", Text: "Nickname", Type: "text", MaxLength: 5}

	cases := []struct {
		name  string
		field FormField
		value string
		want  string
	}{
		{"Number Ok", hours, "20", ""},
		{"Number Not Numeric", hours, "banana", "Hours must be a number"},
		{"Number Out Of Range", hours, "41", "Hours must be between 0 and 40"},
		{"Date Ok", start, "2026-03-15", ""},
		{"Date Malformed", start, "1999-13-45", "Start Date must be a valid date (YYYY-MM-DD)"},
		{"Date Before Minimum", start, "2025-12-31", "Start Date must be on or after 2026-01-01"},
		{"Text Within Max Length", nick, "Ada", ""},
		{"Text Over Max Length", nick, "Adalovelace", "Nickname must be 5 characters or fewer"},
		{"Empty Passes", hours, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.field.ConstraintMessage(tc.value); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("Submission Blocked By Constraints", func(t *testing.T) {
		f := &ApplicationForm{
			JobID: "j1", JobTitle: "Engineer", Company: "Acme",
			FormFields: []FormField{hours, start},
		}
		_, _, err := f.BuildSubmission(map[string]any{
			"hours": "banana",
			"start": "1999-13-45",
		})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(ve.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %v", ve.Messages)
		}
		if ve.Messages[0] != "Hours must be a number" {
			t.Errorf("message[0] = %q", ve.Messages[0])
		}
	})

	t.Run("Profile Submission Blocked By Constraints", func(t *testing.T) {
		f := &ProfileForm{FormFields: []FormField{hours}}
		f.captureOriginals()
		_, _, err := f.BuildSubmission(map[string]string{"hours": "99"})
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Messages) != 1 {
			t.Fatalf("expected single validation message, got %v", err)
		}
	})
}

func TestAcceptedExtensions(t *testing.T) {
	f := FormField{Type: "file", AcceptedTypes: []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/x-whatever",
	}}
	got := f.AcceptedExtensions()
	want := []string{"pdf", "docx", "x-whatever"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ext %d: got %q, want %q", i, got[i], want[i])
		}
	}

	empty := FormField{Type: "file"}
	if got := empty.AcceptedExtensions(); len(got) != 3 || got[0] != "pdf" {
		t.Errorf("default extensions = %v", got)
	}
}

func applicationForm() *ApplicationForm {
	f := &ApplicationForm{
		JobID:    "j1",
		JobTitle: "Engineer",
		Company:  "Acme",
		FormFields: []FormField{
			{ID: "name", Text: "Full Name", Type: "text", Required: true},
			{ID: "cover", Text: "Cover Letter", Type: "textarea"},
			{ID: "resume", Text: "Resume", Type: "file", Required: true},
		},
	}
	return f
}

func TestApplicationFormSubmission(t *testing.T) {
	t.Run("Required Gate Blocks With One Message Per Field", func(t *testing.T) {
		f := applicationForm()
		_, _, err := f.BuildSubmission(map[string]any{"cover": "hi"})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(ve.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %v", ve.Messages)
		}
		if ve.Messages[0] != "Please fill in Full Name" {
			t.Errorf("message[0] = %q", ve.Messages[0])
		}
		if ve.Messages[1] != "Please upload Resume" {
			t.Errorf("message[1] = %q", ve.Messages[1])
		}
	})

	t.Run("Whitespace Only Fails Required", func(t *testing.T) {
		f := applicationForm()
		_, _, err := f.BuildSubmission(map[string]any{
			"name":   "   ",
			"resume": FileAttachment{FileName: "cv.pdf"},
		})
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Messages) != 1 {
			t.Fatalf("expected single validation message, got %v", err)
		}
	})

	t.Run("Single Mode Submission", func(t *testing.T) {
		f := applicationForm()
		attachment := FileAttachment{FileName: "cv.pdf", FileSize: "12KB", FileType: "application/pdf", UploadID: "upload_resume_s1"}
		at, data, err := f.BuildSubmission(map[string]any{
			"name":   "Ada",
			"resume": attachment,
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if at != "FORM_SUBMISSION" {
			t.Errorf("action type %q", at)
		}
		if data["jobId"] != "j1" || data["jobTitle"] != "Engineer" || data["company"] != "Acme" {
			t.Errorf("job identity missing: %v", data)
		}
		formData := data["formData"].(map[string]any)
		if formData["name"] != "Ada" {
			t.Errorf("name = %v", formData["name"])
		}
		if formData["cover"] != "" {
			t.Errorf("unanswered optional field should be empty string, got %v", formData["cover"])
		}
		if formData["resume"].(FileAttachment) != attachment {
			t.Errorf("resume = %v", formData["resume"])
		}
	})

	t.Run("Batch Mode Submission", func(t *testing.T) {
		f := applicationForm()
		f.SelectedJobs = []SelectedJob{
			{JobID: "j1", JobTitle: "Engineer", Company: "Acme"},
			{JobID: "j2", JobTitle: "Designer", Company: "Blob"},
		}
		at, data, err := f.BuildSubmission(map[string]any{
			"name":   "Ada",
			"resume": FileAttachment{FileName: "cv.pdf"},
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if at != "FORM_SUBMISSION" {
			t.Errorf("action type %q", at)
		}
		if _, single := data["jobId"]; single {
			t.Error("batch submission must not carry single-job identity")
		}
		if len(data["selectedJobs"].([]SelectedJob)) != 2 {
			t.Errorf("selectedJobs = %v", data["selectedJobs"])
		}
	})
}

func TestProfileFormDiff(t *testing.T) {
	newForm := func() *ProfileForm {
		f := &ProfileForm{
			Sections: map[string]string{"personal": "Personal Information"},
			FormFields: []FormField{
				{ID: "name", Text: "Name", Type: "text", Value: "Ada", Section: "personal", Required: true},
				{ID: "phone", Text: "Phone", Type: "tel", Value: "555-1234", Section: "personal"},
				{ID: "summary", Text: "Summary", Type: "textarea", Value: "", Section: "career"},
			},
		}
		f.captureOriginals()
		return f
	}

	t.Run("Only Changed Fields", func(t *testing.T) {
		f := newForm()
		at, data, err := f.BuildSubmission(map[string]string{
			"name":    "Ada",
			"phone":   "555-9999",
			"summary": "",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if at != "PROFILE_FORM_SUBMISSION" {
			t.Errorf("action type %q", at)
		}
		formData := data["formData"].(map[string]string)
		if len(formData) != 1 || formData["phone"] != "555-9999" {
			t.Errorf("diff = %v", formData)
		}
	})

	t.Run("Trimmed Comparison", func(t *testing.T) {
		f := newForm()
		diff := f.Diff(map[string]string{"name": "  Ada  ", "phone": "555-1234", "summary": ""})
		if len(diff) != 0 {
			t.Errorf("whitespace-only edits should not count as change: %v", diff)
		}
	})

	t.Run("Cleared Field Sent As Explicit Empty", func(t *testing.T) {
		f := newForm()
		diff := f.Diff(map[string]string{"name": "Ada", "phone": "", "summary": ""})
		v, ok := diff["phone"]
		if !ok || v != "" {
			t.Errorf("cleared field must appear as %q, diff = %v", "", diff)
		}
	})

	t.Run("Empty Diff Aborts", func(t *testing.T) {
		f := newForm()
		_, _, err := f.BuildSubmission(map[string]string{
			"name": "Ada", "phone": "555-1234", "summary": "",
		})
		if !errors.Is(err, ErrNoChanges) {
			t.Fatalf("expected ErrNoChanges, got %v", err)
		}
	})

	t.Run("Required Gate Before Diff", func(t *testing.T) {
		f := newForm()
		_, _, err := f.BuildSubmission(map[string]string{
			"name": "", "phone": "555-1234", "summary": "",
		})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("Sections Group In Field Order", func(t *testing.T) {
		f := newForm()
		order, grouped := f.FieldsBySection()
		if len(order) != 2 || order[0] != "personal" || order[1] != "career" {
			t.Errorf("section order = %v", order)
		}
		if len(grouped["personal"]) != 2 {
			t.Errorf("personal fields = %v", grouped["personal"])
		}
		if f.SectionTitle("personal") != "Personal Information" {
			t.Errorf("mapped title = %q", f.SectionTitle("personal"))
		}
		if f.SectionTitle("career") != "Career" {
			t.Errorf("fallback title = %q", f.SectionTitle("career"))
		}
	})
}
