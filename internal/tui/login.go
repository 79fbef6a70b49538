package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vrecorder/internal/auth"
)

// login form field indices
const (
	fieldPhone = iota
	fieldPassword
	fieldRemember
	fieldCount
)

type loginForm struct {
	phone      textinput.Model
	password   textinput.Model
	remember   int // 0 = no, 1 = yes
	focus      int
	submitting bool
}

func newLoginForm() loginForm {
	pi := textinput.New()
	pi.Placeholder = "phone number"
	pi.CharLimit = 20
	pi.Focus()

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.CharLimit = 64
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	return loginForm{
		phone:    pi,
		password: pw,
		focus:    fieldPhone,
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.login
	if f.submitting {
		return m, nil
	}
	key := msg.String()

	switch key {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down":
		f.blurCurrent()
		f.focus = (f.focus + 1) % fieldCount
		f.focusCurrent()
		return m, nil

	case "shift+tab", "up":
		f.blurCurrent()
		f.focus = (f.focus - 1 + fieldCount) % fieldCount
		f.focusCurrent()
		return m, nil

	case "enter":
		req := auth.LoginRequest{
			Phone:      strings.TrimSpace(f.phone.Value()),
			Password:   f.password.Value(),
			RememberMe: f.remember == 1,
		}
		if req.Phone == "" || req.Password == "" {
			m.errMsg = "Enter phone number and password"
			return m, nil
		}
		f.submitting = true
		m.errMsg = ""
		ctx, svc := m.ctx, m.auth
		return m, func() tea.Msg {
			user, err := svc.Login(ctx, req)
			return loginDoneMsg{user: user, err: err}
		}
	}

	switch f.focus {
	case fieldPhone:
		var cmd tea.Cmd
		f.phone, cmd = f.phone.Update(msg)
		return m, cmd
	case fieldPassword:
		var cmd tea.Cmd
		f.password, cmd = f.password.Update(msg)
		return m, cmd
	case fieldRemember:
		switch key {
		case "left", "h":
			f.remember = 0
		case "right", "l":
			f.remember = 1
		case " ":
			f.remember = 1 - f.remember
		}
	}

	return m, nil
}

func (f *loginForm) blurCurrent() {
	switch f.focus {
	case fieldPhone:
		f.phone.Blur()
	case fieldPassword:
		f.password.Blur()
	}
}

func (f *loginForm) focusCurrent() {
	switch f.focus {
	case fieldPhone:
		f.phone.Focus()
		f.phone.CursorEnd()
	case fieldPassword:
		f.password.Focus()
		f.password.CursorEnd()
	}
}

func (m Model) viewLogin() string {
	f := m.login

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(1, 2).
		Width(56)

	titleStr := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Render("Visit Recorder · Log in")

	footer := dimStyle.Render("Enter: log in  Tab: next  ←→: toggle  Esc: quit")
	if f.submitting {
		footer = dimStyle.Render("Logging in...")
	}

	content := fmt.Sprintf(
		"%s\n\n%s  %s\n\n%s  %s\n\n%s  %s\n\n%s",
		titleStr,
		fieldLabel("Phone:", f.focus == fieldPhone), f.phone.View(),
		fieldLabel("Pass:", f.focus == fieldPassword), f.password.View(),
		fieldLabel("Keep:", f.focus == fieldRemember),
		renderRadio([]string{"This session", "7 days"}, f.remember, f.focus == fieldRemember),
		footer,
	)
	if m.status != "" {
		content += "\n\n" + helpStyle.Render(m.status)
	}
	if m.errMsg != "" {
		content += "\n\n" + errorStyle.Render(m.errMsg)
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

func fieldLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Width(7)
	if focused {
		style = style.Bold(true).Foreground(lipgloss.Color("39"))
	} else {
		style = style.Foreground(lipgloss.Color("252"))
	}
	return style.Render(label)
}

func renderRadio(options []string, selected int, focused bool) string {
	var parts []string
	for i, opt := range options {
		if i == selected {
			style := lipgloss.NewStyle().Bold(true)
			if focused {
				style = style.Foreground(lipgloss.Color("39"))
			} else {
				style = style.Foreground(lipgloss.Color("255"))
			}
			parts = append(parts, style.Render("● "+opt))
		} else {
			parts = append(parts, dimStyle.Render("○ "+opt))
		}
	}
	return strings.Join(parts, "   ")
}
