package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dow/internal/api"
	"dow/internal/config"
)

const (
	tabSubmit = iota
	tabHistory
)

type submitDoneMsg struct {
	pretty string
	err    error
}

type historyMsg struct {
	jobs []api.Job
	err  error
}

type tickMsg time.Time

// Model drives the submission flow: the URL field and the single result
// cell, plus a history tab backed by the server registry. The result cell
// is one shared value; a second submit while one is pending overwrites it
// with Pending, and whichever response lands last wins.
type Model struct {
	client *api.Client
	cfg    *config.Config
	th     Theme
	w, h   int

	activeTab int
	input     textinput.Model
	hint      string

	result  ResultState
	display string

	jobs       []api.Job
	historyErr error
	selected   int
	filterOn   bool
	filter     textinput.Model
}

func New(cfg *config.Config, client *api.Client) *Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "https://..."
	in.CharLimit = 2048
	in.Focus()

	fl := textinput.New()
	fl.Prompt = "/ "
	fl.Placeholder = "filter"
	fl.CharLimit = 128

	return &Model{
		client: client,
		cfg:    cfg,
		th:     defaultTheme(),
		input:  in,
		filter: fl,
		result: ResultEmpty,
	}
}

// Result exposes the current state, for tests.
func (m *Model) Result() ResultState { return m.result }

// Display exposes the current output string, for tests.
func (m *Model) Display() string { return m.display }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case submitDoneMsg:
		// Applied in delivery order: with overlapping submissions the
		// last response to arrive owns the final display.
		if msg.err != nil {
			m.result = ResultFailure
			m.display = errorPrefix + msg.err.Error()
		} else {
			m.result = ResultSuccess
			m.display = msg.pretty
		}
		return m, nil

	case historyMsg:
		m.jobs = msg.jobs
		m.historyErr = msg.err
		if m.selected >= len(m.visibleJobs()) {
			m.selected = 0
		}
		return m, m.scheduleRefresh()

	case tickMsg:
		if m.activeTab == tabHistory {
			return m, m.fetchHistory()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.activeTab == tabSubmit {
			m.activeTab = tabHistory
			m.selected = 0
			return m, m.fetchHistory()
		}
		m.activeTab = tabSubmit
		m.filterOn = false
		m.filter.Blur()
		m.input.Focus()
		return m, textinput.Blink
	}

	if m.activeTab == tabSubmit {
		return m.updateSubmitTab(msg)
	}
	return m.updateHistoryTab(msg)
}

func (m *Model) updateSubmitTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.hint != "" && strings.TrimSpace(m.input.Value()) != "" {
		m.hint = ""
	}
	return m, cmd
}

func (m *Model) updateHistoryTab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterOn {
		switch msg.Type {
		case tea.KeyEsc:
			m.filterOn = false
			m.filter.Blur()
			m.filter.SetValue("")
			return m, nil
		case tea.KeyEnter:
			m.filterOn = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.selected = 0
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.filterOn = true
		m.filter.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.fetchHistory()
	case "j", "down":
		if m.selected < len(m.visibleJobs())-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	}
	return m, nil
}

// submit validates the field, flips the result cell to Pending before any
// network work, and returns the async request command. Only emptiness is
// validated; everything else is the backend's call.
func (m *Model) submit() tea.Cmd {
	url := strings.TrimSpace(m.input.Value())
	if url == "" {
		m.hint = "URL is required"
		return nil
	}
	m.hint = ""
	m.result = ResultPending
	m.display = pendingDisplay
	client := m.client
	return func() tea.Msg {
		pretty, err := client.Submit(context.Background(), url)
		return submitDoneMsg{pretty: pretty, err: err}
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		jobs, err := client.Downloads(context.Background())
		return historyMsg{jobs: jobs, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	hz := m.cfg.UI.RefreshHz
	if hz <= 0 || m.activeTab != tabHistory {
		return nil
	}
	if hz > 10 {
		hz = 10
	}
	return tea.Tick(time.Second/time.Duration(hz), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) View() string {
	if m.w == 0 {
		m.w = 100
	}
	if m.h == 0 {
		m.h = 30
	}
	header := m.th.border.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		m.th.title.Render("dow"), "  ", m.renderTabs()))
	var body string
	if m.activeTab == tabSubmit {
		body = m.renderSubmit()
	} else {
		body = m.renderHistory()
	}
	footer := m.th.border.Render(m.th.footer.Render(m.footerText()))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) footerText() string {
	if m.activeTab == tabSubmit {
		return "enter submit • tab history • ctrl+c quit"
	}
	return fmt.Sprintf("j/k nav • / filter • r refresh • tab submit • q quit • %d items", len(m.visibleJobs()))
}
