package ui

import (
	"fmt"
	"strings"
)

// Job is one entry of a JobList component.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	MatchScore   float64  `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
}

// SearchCriteria echoes the query the backend ran for a JobList.
type SearchCriteria struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

// JobList presents matched jobs with multi-select batch apply.
type JobList struct {
	Message        string          `json:"message"`
	Jobs           []Job           `json:"jobs"`
	TotalMatches   float64         `json:"totalMatches"`
	SearchCriteria *SearchCriteria `json:"searchCriteria"`
}

func (j *JobList) ComponentName() string { return "JobList" }

// SelectableIDs returns the ids eligible for select-all; jobs missing
// an id are skipped.
func (j *JobList) SelectableIDs() []string {
	ids := make([]string, 0, len(j.Jobs))
	for _, job := range j.Jobs {
		if job.ID != "" {
			ids = append(ids, job.ID)
		}
	}
	return ids
}

// ApplySelection builds the batch-apply action for the currently
// selected job ids. Selection order follows the list, not click order,
// matching how the selection was presented.
func (j *JobList) ApplySelection(selected []string) (actionType string, actionData map[string]any, err error) {
	chosen := map[string]bool{}
	for _, id := range selected {
		chosen[id] = true
	}
	var jobs []map[string]any
	for _, job := range j.Jobs {
		if job.ID == "" || !chosen[job.ID] {
			continue
		}
		title := job.Title
		if title == "" {
			title = "Unknown Title"
		}
		company := job.Company
		if company == "" {
			company = "Unknown Company"
		}
		jobs = append(jobs, map[string]any{
			"jobId":    job.ID,
			"jobTitle": title,
			"company":  company,
		})
	}
	if len(jobs) == 0 {
		return "", nil, &ValidationError{Messages: []string{"Select one or more jobs to apply"}}
	}
	return "CLICKED_JOB_APPLY", map[string]any{
		"selectedJobs": jobs,
		"jobCount":     len(jobs),
	}, nil
}

// Render draws the list without selection marks; the interactive view
// overlays selection via RenderWithSelection.
func (j *JobList) Render(width int) string {
	return j.RenderWithSelection(width, nil)
}

// RenderWithSelection draws the job cards, marking ids present in
// selected.
func (j *JobList) RenderWithSelection(width int, selected map[string]bool) string {
	if len(j.Jobs) == 0 {
		query := "your search"
		location := "your location"
		if j.SearchCriteria != nil {
			if j.SearchCriteria.Query != "" {
				query = fmt.Sprintf("'%s'", j.SearchCriteria.Query)
			}
			if j.SearchCriteria.Location != "" {
				location = j.SearchCriteria.Location
			}
		}
		return warnStyle.Render(fmt.Sprintf(
			"No jobs found matching %s in %s. Try different keywords or a broader location.",
			query, location))
	}

	var b strings.Builder
	header := j.Message
	if header == "" {
		header = "Here are the top job matches I found for you:"
	}
	b.WriteString(titleStyle.Render(header) + "\n")

	total := int(j.TotalMatches)
	if total == 0 {
		total = len(j.Jobs)
	}
	if j.SearchCriteria != nil {
		fmt.Fprintf(&b, "Found %d jobs matching '%s' in %s\n",
			total, j.SearchCriteria.Query, j.SearchCriteria.Location)
	} else {
		fmt.Fprintf(&b, "Found %d job matches\n", total)
	}

	for i, job := range j.Jobs {
		mark := "[ ]"
		if job.ID == "" {
			mark = "[!]"
		} else if selected[job.ID] {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "\n%s %d. %s\n", mark, i+1, jobTitleStyle.Render(job.Title))
		fmt.Fprintf(&b, "      %s", job.Company)
		if job.Location != "" {
			fmt.Fprintf(&b, " — %s", job.Location)
		}
		b.WriteString("\n")
		if job.MatchScore > 0 {
			fmt.Fprintf(&b, "      %s\n", scoreStyle.Render(fmt.Sprintf("%.0f%% match", job.MatchScore)))
		}
		for _, reason := range job.MatchReasons {
			if strings.TrimSpace(reason) == "" {
				continue
			}
			fmt.Fprintf(&b, "      • %s\n", strings.TrimSpace(reason))
		}
	}
	b.WriteString("\n" + dimStyle.Render("tab: select jobs • space: toggle • a: all • c: clear • enter: apply"))
	return b.String()
}
