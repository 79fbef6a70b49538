package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vrecorder/internal/model"
	"vrecorder/internal/schedule"
)

func (m Model) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		return m.navigate(func(ctx context.Context) error { return m.nav.Navigate(ctx, schedule.Prev) })

	case "right", "l":
		return m.navigate(func(ctx context.Context) error { return m.nav.Navigate(ctx, schedule.Next) })

	case "t":
		today := m.now()
		return m.navigate(func(ctx context.Context) error { return m.nav.SelectDate(ctx, today) })

	case "r":
		m.loading = true
		return m, m.runSchedule(m.nav.Load)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.view.Appointments)-1 {
			m.cursor++
		}

	case "s":
		a, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.loading = true
		ctx, nav := m.ctx, m.nav
		return m, func() tea.Msg {
			updated, err := nav.StartService(ctx, a.ID)
			return transitionDoneMsg{appointment: updated, verb: "in progress", err: err}
		}

	case "c":
		return m.askConfirm(actionComplete)

	case "x":
		return m.askConfirm(actionCancel)

	case "o":
		ctx, svc := m.ctx, m.auth
		return m, func() tea.Msg {
			return loggedOutMsg{err: svc.Logout(ctx)}
		}
	}

	return m, nil
}

func (m Model) navigate(op func(context.Context) error) (tea.Model, tea.Cmd) {
	m.loading = true
	m.cursor = 0
	m.status = ""
	return m, m.runSchedule(op)
}

// askConfirm checks the transition without confirming it. The declined
// attempt yields the prompt, which is then shown until y or n is pressed.
func (m Model) askConfirm(kind actionKind) (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok {
		return m, nil
	}

	var prompt string
	probe := func(p string) bool {
		prompt = p
		return false
	}

	var err error
	switch kind {
	case actionComplete:
		_, err = m.nav.CompleteService(m.ctx, a.ID, probe)
	case actionCancel:
		_, err = m.nav.CancelAppointment(m.ctx, a.ID, probe)
	}
	if !errors.Is(err, schedule.ErrNotConfirmed) {
		if err != nil {
			m.errMsg = err.Error()
		}
		return m, nil
	}

	m.pending = &pendingAction{kind: kind, id: a.ID, prompt: prompt}
	m.mode = modeConfirm
	m.errMsg = ""
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		p := m.pending
		m.pending = nil
		m.mode = modeSchedule
		m.loading = true

		ctx, nav := m.ctx, m.nav
		yes := func(string) bool { return true }
		return m, func() tea.Msg {
			if p.kind == actionComplete {
				updated, err := nav.CompleteService(ctx, p.id, yes)
				return transitionDoneMsg{appointment: updated, verb: "completed", err: err}
			}
			updated, err := nav.CancelAppointment(ctx, p.id, yes)
			return transitionDoneMsg{appointment: updated, verb: "cancelled", err: err}
		}

	case "n", "N", "esc", "q":
		m.pending = nil
		m.mode = modeSchedule
		m.status = "No changes made"
	}
	return m, nil
}

func (m Model) selected() (model.Appointment, bool) {
	if m.loading || len(m.view.Appointments) == 0 {
		return model.Appointment{}, false
	}
	return m.view.Appointments[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.view.Appointments) {
		m.cursor = max(0, len(m.view.Appointments)-1)
	}
}

func (m Model) viewSchedule() string {
	var b strings.Builder

	title := titleStyle.Render("Visit Recorder")
	who := ""
	if m.user != nil {
		who = dimStyle.Render(fmt.Sprintf("  %s (%s)", m.user.Name, m.user.WorkID))
	}
	b.WriteString(title + who + "\n")

	date := headerStyle.Render("◀ " + m.view.Date + " ▶")
	b.WriteString(date + "  " + m.renderCounts() + "\n\n")

	switch {
	case m.loading && len(m.view.Appointments) == 0:
		b.WriteString(dimStyle.Render("  Loading...") + "\n")
	case len(m.view.Appointments) == 0:
		b.WriteString(dimStyle.Render("  No visits scheduled for this day") + "\n")
	default:
		for i, a := range m.view.Appointments {
			b.WriteString(m.renderRow(a, i == m.cursor) + "\n")
		}
	}

	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  "+m.errMsg) + "\n")
	} else if m.status != "" {
		b.WriteString(statusBarStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render("  ←→: day  t: today  r: reload  s: start  c: complete  x: cancel  o: logout  q: quit"))

	return b.String()
}

func (m Model) renderCounts() string {
	parts := []string{fmt.Sprintf("%d visits", m.view.Counts.Total)}
	for _, s := range model.Statuses {
		n := m.view.Counts.Status[s]
		if n == 0 {
			continue
		}
		parts = append(parts, statusStyle(s).Render(fmt.Sprintf("%s %d", statusLabel(s), n)))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) renderRow(a model.Appointment, selected bool) string {
	service := a.ServiceType
	if service == "" {
		service = "-"
	}
	cols := []string{
		pad(a.ScheduledTime, 6),
		pad(visitLabel(a), 18),
		pad(service, 18),
		pad(fmt.Sprintf("%dmin", a.Duration), 7),
	}
	row := strings.Join(cols, " ")

	if selected {
		row = selectedStyle.Render(row + " " + pad(statusLabel(a.Status), 12))
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, row)
	}
	return normalStyle.Render(row + " " + statusStyle(a.Status).Render(statusLabel(a.Status)))
}

func statusLabel(s model.Status) string {
	if s == model.StatusConfirmed {
		return "in progress"
	}
	return string(s)
}

func statusStyle(s model.Status) lipgloss.Style {
	if style, ok := statusStyles[string(s)]; ok {
		return style
	}
	return dimStyle
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
