package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"dow/internal/api"
)

type Theme struct {
	border      lipgloss.Style
	title       lipgloss.Style
	label       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	rowSelected lipgloss.Style
	head        lipgloss.Style
	errText     lipgloss.Style
	footer      lipgloss.Style
}

func defaultTheme() Theme {
	b := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		border:      b.BorderForeground(lipgloss.Color("63")),
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		label:       lipgloss.NewStyle().Faint(true),
		tabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("219")),
		tabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		rowSelected: lipgloss.NewStyle().Bold(true),
		head:        lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		errText:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		footer:      lipgloss.NewStyle().Faint(true),
	}
}

func (m *Model) renderTabs() string {
	labels := []string{"Submit", "History"}
	var parts []string
	for i, lab := range labels {
		style := m.th.tabInactive
		if i == m.activeTab {
			style = m.th.tabActive
		}
		parts = append(parts, style.Render(lab))
	}
	return strings.Join(parts, "  •  ")
}

func (m *Model) renderSubmit() string {
	var sb strings.Builder
	sb.WriteString(m.th.label.Render("Paste a URL and press enter to download it on the backend."))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.hint != "" {
		sb.WriteString(m.th.errText.Render(m.hint))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderResult())
	return m.th.border.Width(m.w - 2).Render(sb.String())
}

// renderResult shows the single result cell: blank, the loading
// placeholder, pretty JSON, or an error line.
func (m *Model) renderResult() string {
	switch m.result {
	case ResultEmpty:
		return ""
	case ResultPending:
		return m.th.label.Render(m.display)
	case ResultFailure:
		return m.th.errText.Render(m.display)
	default:
		return m.display
	}
}

func (m *Model) renderHistory() string {
	var sb strings.Builder
	if m.filterOn || m.filter.Value() != "" {
		sb.WriteString(m.filter.View())
		sb.WriteString("\n")
	}
	if m.historyErr != nil {
		sb.WriteString(m.th.errText.Render(errorPrefix + m.historyErr.Error()))
		return m.th.border.Width(m.w - 2).Render(sb.String())
	}

	sb.WriteString(m.th.head.Render(fmt.Sprintf("%-8s  %-9s  %-12s  %-30s  %-s", "STATUS", "SIZE", "AGE", "TITLE", "FILE")))
	sb.WriteString("\n")
	jobs := m.visibleJobs()
	maxRows := m.h - 10
	if maxRows < 3 {
		maxRows = len(jobs)
	}
	for i, j := range jobs {
		line := fmt.Sprintf("%-8s  %-9s  %-12s  %-30s  %s",
			j.Status, sizeCol(j), ageCol(j), titleCol(j), j.VideoFilename)
		if i == m.selected {
			line = m.th.rowSelected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if i+1 >= maxRows {
			break
		}
	}
	if len(jobs) == 0 {
		sb.WriteString(m.th.label.Render("(no downloads)"))
	}
	return m.th.border.Width(m.w - 2).Render(sb.String())
}

// visibleJobs applies the fuzzy filter over title, URL and host.
func (m *Model) visibleJobs() []api.Job {
	needle := strings.TrimSpace(m.filter.Value())
	if needle == "" {
		return m.jobs
	}
	var out []api.Job
	for _, j := range m.jobs {
		hay := j.Title + " " + j.URL + " " + j.Host
		if fuzzy.MatchNormalizedFold(needle, hay) {
			out = append(out, j)
		}
	}
	return out
}

func sizeCol(j api.Job) string {
	if j.SizeBytes <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(j.SizeBytes))
}

func ageCol(j api.Job) string {
	if j.UpdatedAt <= 0 {
		return "-"
	}
	return humanize.Time(time.Unix(j.UpdatedAt, 0))
}

func titleCol(j api.Job) string {
	t := j.Title
	if t == "" {
		t = j.URL
	}
	if len(t) > 30 {
		t = t[:27] + "..."
	}
	return t
}
