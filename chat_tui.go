package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interacthq/jobagent/backend"
	"github.com/interacthq/jobagent/schema"
	"github.com/interacthq/jobagent/session"
	"github.com/interacthq/jobagent/ui"
)

const (
	welcomeText = "Hello! I am your AI Recruiting Manager. To get started, please tell me what you're looking for, or ask me to check your profile."

	textareaPlaceholder = "Type a message... (ctrl+f find jobs, ctrl+p profile, ctrl+u update, tab: interact)"
)

type uiMode int

const (
	modeProfileGate uiMode = iota
	modeChat
	modeJobSelect
	modeFormFill
	modeActionPick
)

var (
	youStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // Blue
	agentStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("171"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	celebrateStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // Yellow
)

type chatTuiState struct {
	cfg   Config
	store transcriptStoreFull

	mode       uiMode
	dispatcher *Dispatcher

	profileInput textinput.Model
	textarea     textarea.Model
	viewport     viewport.Model
	spinner      spinner.Model
	fieldInput   textinput.Model

	pending   bool
	celebrate bool
	notice    string
	width     int

	// Component interaction state.
	jobList   *ui.JobList
	jobCursor int

	appForm    *ui.ApplicationForm
	profForm   *ui.ProfileForm
	formFields []ui.FormField
	formIdx    int
	formValues map[string]any
	optionIdx  int

	actions    []ui.NextAction
	errDisplay *ui.ErrorDisplay

	lastActionType string
}

// transcriptStoreFull is what the TUI needs from the history manager;
// the dispatcher uses the narrower write-only view.
type transcriptStoreFull interface {
	transcriptStore
	SaveSessionStart(sid, profileID string) error
}

func initialChatModel(cfg Config, store transcriptStoreFull) chatTuiState {
	pi := textinput.New()
	pi.Placeholder = "Profile ID"
	pi.SetValue(cfg.ProfileID)
	pi.CharLimit = 64
	pi.Width = 48
	pi.Focus()

	ta := textarea.New()
	ta.Placeholder = textareaPlaceholder
	ta.Prompt = "┃ "
	ta.CharLimit = 10000
	ta.SetHeight(2)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Pulse
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("171"))

	fi := textinput.New()
	fi.CharLimit = 10000
	fi.Width = 60

	return chatTuiState{
		cfg:          cfg,
		store:        store,
		mode:         modeProfileGate,
		profileInput: pi,
		textarea:     ta,
		viewport:     vp,
		spinner:      sp,
		fieldInput:   fi,
		width:        80,
	}
}

func (m chatTuiState) Init() tea.Cmd {
	return textinput.Blink
}

type turnDoneMsg struct{ err error }

func (m chatTuiState) turnCmd(send func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{err: send(context.Background())}
	}
}

func (m *chatTuiState) beginSession(profileID string) {
	state := session.New(profileID)
	client := backend.NewClient(m.cfg.Endpoint, m.cfg.APIKey, m.cfg.Timeout, m.cfg.Verbose)
	var store transcriptStore
	if m.store != nil {
		if err := m.store.SaveSessionStart(state.SessionID, profileID); err != nil {
			warnf("transcript session start failed: %v", err)
		}
		store = m.store
	}
	m.dispatcher = &Dispatcher{State: state, Client: client, Store: store}

	// The greeting is client-side only; the backend never sees it.
	welcome := schema.NewText(schema.SenderAI, welcomeText, map[string]any{
		schema.CtxProfileID: profileID,
		schema.CtxSessionID: state.SessionID,
	})
	state.Append(welcome)

	m.mode = modeChat
	m.textarea.Focus()
	m.refreshViewport()
}

func (m *chatTuiState) refreshViewport() {
	if m.dispatcher == nil {
		return
	}
	spin := ""
	if m.pending {
		spin = m.spinner.View() + " thinking..."
	}
	m.viewport.SetContent(formatChatLog(m.dispatcher.State, m.width, spin))
	m.viewport.GotoBottom()
}

// sendText kicks off a text turn.
func (m *chatTuiState) sendText(content string) tea.Cmd {
	content = strings.TrimSpace(content)
	if content == "" || m.pending {
		return nil
	}
	m.pending = true
	m.notice = ""
	m.lastActionType = ""
	m.textarea.Reset()
	d := m.dispatcher
	cmd := m.turnCmd(func(ctx context.Context) error {
		_, err := d.SendText(ctx, content)
		return err
	})
	m.refreshViewport()
	return tea.Batch(m.spinner.Tick, cmd)
}

// sendAction kicks off a user_action turn.
func (m *chatTuiState) sendAction(actionType string, actionData map[string]any) tea.Cmd {
	if m.pending {
		return nil
	}
	m.pending = true
	m.notice = ""
	m.lastActionType = actionType
	d := m.dispatcher
	cmd := m.turnCmd(func(ctx context.Context) error {
		_, err := d.SendAction(ctx, actionType, actionData)
		return err
	})
	m.refreshViewport()
	return tea.Batch(m.spinner.Tick, cmd)
}

// quickAction resolves the predefined prompts; job search wording
// depends on whether a list was already shown.
func (m *chatTuiState) quickAction(kind string) string {
	switch kind {
	case "jobs":
		if m.dispatcher.State.HasJobList {
			return "find me more jobs"
		}
		return "find me jobs"
	case "profile":
		return "show my profile"
	case "update":
		return "update my profile"
	}
	return ""
}

// enterInteraction binds the latest actionable component, newest first.
func (m *chatTuiState) enterInteraction() {
	msgs := m.dispatcher.State.Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		p, ok := msgs[i].Component()
		if !ok {
			continue
		}
		switch c := ui.Decode(p.ComponentName, p.ComponentProps).(type) {
		case *ui.JobList:
			if len(c.Jobs) == 0 {
				continue
			}
			m.jobList = c
			m.jobCursor = 0
			m.mode = modeJobSelect
			m.textarea.Blur()
			return
		case *ui.ApplicationForm:
			if len(c.FormFields) == 0 {
				continue
			}
			m.appForm = c
			m.profForm = nil
			m.startForm(c.FormFields)
			return
		case *ui.ProfileForm:
			if len(c.FormFields) == 0 {
				continue
			}
			m.profForm = c
			m.appForm = nil
			m.startForm(c.FormFields)
			return
		case *ui.ApplicationSuccess:
			if acts := c.Actions(); len(acts) > 0 {
				m.actions = acts
				m.errDisplay = nil
				m.mode = modeActionPick
				m.textarea.Blur()
				return
			}
		case *ui.ProfileSuccess:
			if acts := c.Actions(); len(acts) > 0 {
				m.actions = acts
				m.errDisplay = nil
				m.mode = modeActionPick
				m.textarea.Blur()
				return
			}
		case *ui.ErrorDisplay:
			if c.CanRetry() {
				m.errDisplay = c
				m.actions = nil
				m.mode = modeActionPick
				m.textarea.Blur()
				return
			}
		}
	}
	m.notice = "Nothing to interact with yet."
}

func (m *chatTuiState) startForm(fields []ui.FormField) {
	m.formFields = fields
	m.formIdx = 0
	m.formValues = make(map[string]any, len(fields))
	for i := range fields {
		m.formValues[fields[i].ID] = fields[i].DefaultValue()
	}
	m.mode = modeFormFill
	m.textarea.Blur()
	m.focusField()
}

func (m *chatTuiState) focusField() {
	field := &m.formFields[m.formIdx]
	switch field.Type {
	case "yesno", "select":
		m.optionIdx = 0
		current, _ := m.formValues[field.ID].(string)
		for i, opt := range fieldOptions(field) {
			if opt == current {
				m.optionIdx = i
				break
			}
		}
	case "file":
		m.fieldInput.SetValue("")
		m.fieldInput.Placeholder = "path to file (" + strings.Join(field.AcceptedExtensions(), ", ") + ")"
		m.fieldInput.Focus()
	default:
		v, _ := m.formValues[field.ID].(string)
		m.fieldInput.SetValue(v)
		m.fieldInput.Placeholder = field.Placeholder
		m.fieldInput.Focus()
	}
}

func fieldOptions(field *ui.FormField) []string {
	if field.Type == "yesno" {
		return []string{"Yes", "No"}
	}
	return field.Options
}

func (m *chatTuiState) leaveInteraction() {
	m.mode = modeChat
	m.fieldInput.Blur()
	m.textarea.Focus()
	m.refreshViewport()
}

// advanceField commits the current field and moves on; on the last
// field it submits.
func (m *chatTuiState) advanceField() tea.Cmd {
	field := &m.formFields[m.formIdx]
	switch field.Type {
	case "yesno", "select":
		opts := fieldOptions(field)
		if len(opts) > 0 {
			m.formValues[field.ID] = opts[m.optionIdx]
		}
	case "file":
		path := strings.TrimSpace(m.fieldInput.Value())
		if path != "" {
			att, err := ui.AttachFile(field, m.dispatcher.State.SessionID, path)
			if err != nil {
				m.notice = err.Error()
				return nil
			}
			m.formValues[field.ID] = att
		} else {
			delete(m.formValues, field.ID)
		}
	default:
		v := m.fieldInput.Value()
		if msg := field.ConstraintMessage(v); msg != "" {
			m.notice = msg
			return nil
		}
		m.formValues[field.ID] = v
	}

	m.notice = ""
	if m.formIdx < len(m.formFields)-1 {
		m.formIdx++
		m.focusField()
		return nil
	}
	return m.submitForm()
}

func (m *chatTuiState) submitForm() tea.Cmd {
	if m.appForm != nil {
		at, data, err := m.appForm.BuildSubmission(m.formValues)
		if err != nil {
			var ve *ui.ValidationError
			if errors.As(err, &ve) {
				m.notice = strings.Join(ve.Messages, " • ")
				m.formIdx = 0
				m.focusField()
				return nil
			}
			m.notice = err.Error()
			return nil
		}
		m.dispatcher.State.ClearSelection()
		m.celebrate = true
		m.leaveInteraction()
		return m.sendAction(at, data)
	}

	values := make(map[string]string, len(m.formValues))
	for k, v := range m.formValues {
		s, _ := v.(string)
		values[k] = s
	}
	at, data, err := m.profForm.BuildSubmission(values)
	if err != nil {
		if errors.Is(err, ui.ErrNoChanges) {
			m.notice = "No changes detected. Modify the fields you want to update."
			m.leaveInteraction()
			return nil
		}
		var ve *ui.ValidationError
		if errors.As(err, &ve) {
			m.notice = strings.Join(ve.Messages, " • ")
			m.formIdx = 0
			m.focusField()
			return nil
		}
		m.notice = err.Error()
		return nil
	}
	m.leaveInteraction()
	return m.sendAction(at, data)
}

func (m chatTuiState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width - 2
		m.textarea.SetWidth(msg.Width - 2)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refreshViewport()
			return m, cmd
		}
		return m, nil

	case turnDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.celebrate = false
			m.notice = turnNotice(msg.err)
		}
		m.refreshViewport()
		return m, nil
	}

	switch m.mode {
	case modeProfileGate:
		return m.updateProfileGate(msg)
	case modeJobSelect:
		return m.updateJobSelect(msg)
	case modeFormFill:
		return m.updateFormFill(msg)
	case modeActionPick:
		return m.updateActionPick(msg)
	default:
		return m.updateChat(msg)
	}
}

func (m chatTuiState) updateProfileGate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			id := strings.TrimSpace(m.profileInput.Value())
			if id == "" {
				m.notice = "Please enter a Profile ID to continue."
				return m, nil
			}
			m.notice = ""
			m.beginSession(id)
			return m, textarea.Blink
		}
	}
	var cmd tea.Cmd
	m.profileInput, cmd = m.profileInput.Update(msg)
	return m, cmd
}

func (m chatTuiState) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok {
		if m.celebrate {
			m.celebrate = false
		}
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			if !m.pending {
				m.enterInteraction()
			}
			return m, nil
		case tea.KeyCtrlF:
			cmd := m.sendText(m.quickAction("jobs"))
			return m, cmd
		case tea.KeyCtrlP:
			cmd := m.sendText(m.quickAction("profile"))
			return m, cmd
		case tea.KeyCtrlU:
			cmd := m.sendText(m.quickAction("update"))
			return m, cmd
		case tea.KeyCtrlS:
			if err := clipboard.WriteAll(plainTranscript(m.dispatcher.State.Messages)); err != nil {
				m.notice = "Could not copy to clipboard: " + err.Error()
			} else {
				m.notice = "Transcript copied to clipboard."
			}
			return m, nil
		case tea.KeyEnter:
			cmd := m.sendText(m.textarea.Value())
			return m, cmd
		}
	}
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m chatTuiState) updateJobSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	st := m.dispatcher.State
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "tab":
		m.leaveInteraction()
		return m, nil
	case "up", "k":
		if m.jobCursor > 0 {
			m.jobCursor--
		}
	case "down", "j":
		if m.jobCursor < len(m.jobList.Jobs)-1 {
			m.jobCursor++
		}
	case " ":
		if job := m.jobList.Jobs[m.jobCursor]; job.ID != "" {
			st.ToggleJob(job.ID)
		}
	case "a":
		st.SelectAll(m.jobList.SelectableIDs())
	case "c":
		st.ClearSelection()
	case "enter":
		at, data, err := m.jobList.ApplySelection(st.SelectedJobs)
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.leaveInteraction()
		cmd := m.sendAction(at, data)
		return m, cmd
	}
	return m, nil
}

func (m chatTuiState) updateFormFill(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.fieldInput, cmd = m.fieldInput.Update(msg)
		return m, cmd
	}

	field := &m.formFields[m.formIdx]
	choosing := field.Type == "yesno" || field.Type == "select"

	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.leaveInteraction()
		m.notice = ""
		return m, nil
	case tea.KeyEnter:
		cmd := m.advanceField()
		return m, cmd
	}
	if choosing {
		opts := fieldOptions(field)
		if len(opts) == 0 {
			return m, nil
		}
		switch key.String() {
		case "left", "up":
			m.optionIdx = (m.optionIdx + len(opts) - 1) % len(opts)
		case "right", "down", " ":
			m.optionIdx = (m.optionIdx + 1) % len(opts)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return m, cmd
}

func (m chatTuiState) updateActionPick(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "tab":
		m.leaveInteraction()
		return m, nil
	case "r":
		if m.errDisplay != nil {
			at, data := m.errDisplay.Retry()
			m.leaveInteraction()
			cmd := m.sendAction(at, data)
			return m, cmd
		}
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.actions) {
			if text, ok := m.actions[n-1].QuickReply(); ok {
				m.leaveInteraction()
				cmd := m.sendText(text)
				return m, cmd
			}
			m.notice = fmt.Sprintf("%s is not available yet.", m.actions[n-1].Label)
		}
	}
	return m, nil
}

func (m chatTuiState) View() string {
	if m.mode == modeProfileGate {
		var b strings.Builder
		b.WriteString(agentStyle.Render("AI Recruiting Manager") + "\n\n")
		b.WriteString("Enter your Profile ID to start:\n")
		b.WriteString(m.profileInput.View() + "\n")
		if m.notice != "" {
			b.WriteString(noticeStyle.Render(m.notice) + "\n")
		}
		b.WriteString(statusStyle.Render("enter: start • esc: quit"))
		return b.String()
	}

	var b strings.Builder
	b.WriteString(m.viewport.View() + "\n")

	if m.celebrate {
		b.WriteString(celebrateStyle.Render("🎉 Application submitted — good luck!") + "\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}

	switch m.mode {
	case modeJobSelect:
		job := m.jobList.Jobs[m.jobCursor]
		fmt.Fprintf(&b, "%s %d/%d: %s at %s\n",
			statusStyle.Render("job"), m.jobCursor+1, len(m.jobList.Jobs), job.Title, job.Company)
		b.WriteString(statusStyle.Render("space: toggle • a: all • c: clear • enter: apply • esc: back"))
	case modeFormFill:
		field := &m.formFields[m.formIdx]
		fmt.Fprintf(&b, "%s (%d/%d)\n", field.Label(), m.formIdx+1, len(m.formFields))
		if opts := fieldOptions(field); field.Type == "yesno" || field.Type == "select" {
			for i, opt := range opts {
				mark := "( )"
				if i == m.optionIdx {
					mark = "(•)"
				}
				fmt.Fprintf(&b, "  %s %s", mark, opt)
			}
			b.WriteString("\n" + statusStyle.Render("arrows: choose • enter: next • esc: cancel"))
		} else {
			b.WriteString(m.fieldInput.View() + "\n")
			b.WriteString(statusStyle.Render("enter: next • esc: cancel"))
		}
	case modeActionPick:
		if m.errDisplay != nil {
			b.WriteString(statusStyle.Render("r: retry • esc: back"))
		} else {
			b.WriteString(statusStyle.Render("1-9: choose an action • esc: back"))
		}
	default:
		b.WriteString(m.textarea.View())
	}
	return b.String() + "\n"
}

// turnNotice maps a failed turn to its single user-visible message.
func turnNotice(err error) string {
	var te *backend.TransportError
	if errors.As(err, &te) {
		return te.UserMessage()
	}
	if errors.Is(err, session.ErrEmptyResponse) {
		return "The agent did not return a valid response. Please try again."
	}
	var se *schema.SchemaError
	if errors.As(err, &se) {
		return "The agent sent a response this client could not understand."
	}
	return err.Error()
}

// formatChatLog renders the whole transcript for the viewport.
func formatChatLog(st *session.State, width int, spin string) string {
	selected := map[string]bool{}
	for _, id := range st.SelectedJobs {
		selected[id] = true
	}

	var b strings.Builder
	for _, msg := range st.Messages {
		switch msg.Type {
		case schema.TypeText:
			if msg.Sender == schema.SenderUser {
				b.WriteString(youStyle.Render("You: ") + msg.Text() + "\n\n")
			} else {
				b.WriteString(agentStyle.Render("Agent:") + "\n")
				b.WriteString(ui.RenderMarkdown(msg.Text(), width) + "\n\n")
			}
		case schema.TypeUserAction:
			if a, ok := msg.Action(); ok {
				b.WriteString(statusStyle.Render("→ "+a.ActionType) + "\n\n")
			}
		case schema.TypeUIComponent:
			if p, ok := msg.Component(); ok {
				c := ui.Decode(p.ComponentName, p.ComponentProps)
				if jl, isJobList := c.(*ui.JobList); isJobList {
					b.WriteString(jl.RenderWithSelection(width, selected) + "\n\n")
				} else {
					b.WriteString(c.Render(width) + "\n\n")
				}
			}
		}
	}
	if spin != "" {
		b.WriteString(spin + "\n")
	}
	return b.String()
}

// plainTranscript is the unstyled text put on the clipboard.
func plainTranscript(msgs []schema.ChatMessage) string {
	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Type {
		case schema.TypeText:
			who := "You"
			if msg.Sender == schema.SenderAI {
				who = "Agent"
			}
			fmt.Fprintf(&b, "%s: %s\n", who, msg.Text())
		case schema.TypeUserAction:
			if a, ok := msg.Action(); ok {
				fmt.Fprintf(&b, "You: [%s]\n", a.ActionType)
			}
		case schema.TypeUIComponent:
			if p, ok := msg.Component(); ok {
				fmt.Fprintf(&b, "Agent: [%s]\n", p.ComponentName)
			}
		}
	}
	return b.String()
}
