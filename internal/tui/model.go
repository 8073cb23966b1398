// Package tui is a terminal chat over one ingested document.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/docmind/internal/pipeline"
)

// Asker is the TUI-facing subset of the pipeline.
type Asker interface {
	Ask(ctx context.Context, question, chapter string) (pipeline.Answer, error)
}

type exchange struct {
	question string
	answer   pipeline.Answer
	err      error
}

type answerMsg struct {
	exchange
	elapsed time.Duration
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	asker    Asker
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	summary  string
	status   string
	chapter  string
	waiting  bool
	ready    bool
}

// New creates a chat model. summary is shown under the header.
func New(asker Asker, summary string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, /chapter ch_N to filter, /all to clear"
	ti.Focus()
	ti.CharLimit = 0
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return Model{
		asker:    asker,
		timeout:  timeout,
		input:    ti,
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   "Document loaded. Ask away.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.waiting = false
		m.history = append(m.history, msg.exchange)
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered in %s", msg.elapsed.Round(time.Millisecond))
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.submit()
		case "pgup", "up":
			m.viewport.LineUp(3)
			return m, nil
		case "pgdown", "down":
			m.viewport.LineDown(3)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.waiting {
		return m, nil
	}
	m.input.SetValue("")

	switch {
	case q == "/all":
		m.chapter = ""
		m.status = "Searching the whole document."
		return m, nil
	case strings.HasPrefix(q, "/chapter"):
		id := strings.TrimSpace(strings.TrimPrefix(q, "/chapter"))
		if id == "" {
			m.status = "Usage: /chapter ch_N"
			return m, nil
		}
		m.chapter = id
		m.status = "Filtering to chapter " + id
		return m, nil
	}

	m.waiting = true
	m.status = "Thinking..."
	return m, m.ask(q, m.chapter)
}

func (m Model) ask(question, chapter string) tea.Cmd {
	asker, timeout := m.asker, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		ans, err := asker.Ask(ctx, question, chapter)
		return answerMsg{exchange: exchange{question: question, answer: ans, err: err}, elapsed: time.Since(start)}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docmind")
	if m.chapter != "" {
		header += dimStyle.Render("  [chapter " + m.chapter + "]")
	}
	summary := dimStyle.Render(m.summary)
	transcript := transcriptStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return dimStyle.Render("No questions yet.")
	}
	var sb strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(questionStyle.Render("Q: " + ex.question))
		sb.WriteString("\n")
		sb.WriteString(renderAnswer(ex))
	}
	return sb.String()
}

func renderAnswer(ex exchange) string {
	if ex.err != nil {
		return warnStyle.Render("error: " + ex.err.Error())
	}
	a := ex.answer
	var sb strings.Builder
	sb.WriteString(a.Answer)
	if a.Reason == "" {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("confidence %.2f  cited %v  grounded %v", a.Confidence, a.HasCitations, a.IsGrounded)))
	}
	for _, s := range a.Sources {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  source: %s / %s (%s)", s.Chapter, s.Section, s.ChunkID)))
	}
	for _, w := range a.Warnings {
		sb.WriteString("\n")
		sb.WriteString(warnStyle.Render("  ! " + w))
	}
	return sb.String()
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
