// Package tui is the terminal front end: a login form and a day schedule
// driven by the same session, API client and navigator as the web gateway.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vrecorder/internal/auth"
	"vrecorder/internal/model"
	"vrecorder/internal/schedule"
	"vrecorder/internal/session"
)

// CheckInterval is how often the session is validated while the schedule
// is open
const CheckInterval = time.Minute

type mode int

const (
	modeStartup mode = iota
	modeLogin
	modeSchedule
	modeConfirm
)

type actionKind int

const (
	actionComplete actionKind = iota
	actionCancel
)

// pendingAction is a transition waiting for y/n
type pendingAction struct {
	kind   actionKind
	id     string
	prompt string
}

type (
	sessionCheckedMsg struct {
		result    session.Result
		status    *auth.Status
		refreshed bool
		err       error
	}
	loginDoneMsg struct {
		user *session.User
		err  error
	}
	scheduleLoadedMsg struct{ err error }
	transitionDoneMsg struct {
		appointment *model.Appointment
		verb        string
		err         error
	}
	loggedOutMsg struct{ err error }
	tickMsg      time.Time
)

type Model struct {
	ctx  context.Context
	auth *auth.Service
	nav  *schedule.Navigator
	now  func() time.Time
	tick func() tea.Cmd

	mode    mode
	login   *loginForm
	user    *session.User
	view    schedule.View
	cursor  int
	loading bool
	pending *pendingAction
	status  string
	errMsg  string

	width    int
	height   int
	quitting bool
}

// NewModel creates the terminal UI over the shared services
func NewModel(ctx context.Context, authSvc *auth.Service, nav *schedule.Navigator) Model {
	return Model{
		ctx:    ctx,
		auth:   authSvc,
		nav:    nav,
		now:    time.Now,
		tick:   tick,
		mode:   modeStartup,
		view:   nav.Snapshot(),
		width:  100,
		height: 30,
	}
}

func (m Model) Init() tea.Cmd {
	return m.checkSession(false)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modeSchedule:
			return m.updateSchedule(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m, nil

	case sessionCheckedMsg:
		return m.onSessionChecked(msg)

	case loginDoneMsg:
		if msg.err != nil {
			m.login.submitting = false
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.user = msg.user
		m.login = nil
		m.errMsg = ""
		m.status = "Welcome, " + msg.user.Name
		return m.enterSchedule()

	case scheduleLoadedMsg:
		m.view = m.nav.Snapshot()
		m.loading = m.view.Loading
		m.clampCursor()
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.errMsg = ""
		return m, nil

	case transitionDoneMsg:
		m.view = m.nav.Snapshot()
		m.loading = m.view.Loading
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("%s %s", visitLabel(*msg.appointment), msg.verb)
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m.enterLogin("Logged out")

	case tickMsg:
		if m.mode != modeSchedule && m.mode != modeConfirm {
			return m, nil
		}
		return m, m.checkSession(true)
	}

	return m, nil
}

func (m Model) onSessionChecked(msg sessionCheckedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		if m.mode == modeStartup {
			return m.enterLogin("")
		}
		return m, m.tick()
	}

	if !msg.result.Valid {
		if m.mode == modeStartup || msg.result.Reason == session.ReasonNoSession {
			return m.enterLogin("")
		}
		return m.enterLogin(expiredMessage(msg.result.Reason))
	}

	if msg.status != nil && msg.status.User != nil {
		m.user = msg.status.User
	}
	if msg.refreshed {
		m.status = "Session extended"
	}
	if m.mode == modeStartup {
		return m.enterSchedule()
	}
	return m, m.tick()
}

func (m Model) enterLogin(notice string) (Model, tea.Cmd) {
	f := newLoginForm()
	m.login = &f
	m.mode = modeLogin
	m.user = nil
	m.pending = nil
	m.loading = false
	m.status = notice
	return m, nil
}

func (m Model) enterSchedule() (Model, tea.Cmd) {
	m.mode = modeSchedule
	m.loading = true
	return m, tea.Batch(m.runSchedule(m.nav.Load), m.tick())
}

// fail routes err through the auth boundary; a rejected token ends the
// session and returns to the login form
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	err = m.auth.Guard(m.ctx, err)
	if errors.Is(err, auth.ErrLoginRequired) {
		nm, cmd := m.enterLogin("")
		nm.errMsg = err.Error()
		return nm, cmd
	}
	m.errMsg = err.Error()
	return m, nil
}

func expiredMessage(reason session.Reason) string {
	switch reason {
	case session.ReasonRememberMeExpired:
		return "Your remembered login has ended, please log in again"
	case session.ReasonSessionExpired:
		return "Session expired, please log in again"
	}
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(CheckInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// checkSession validates the session and, on the periodic check, extends
// a window that is about to close
func (m Model) checkSession(extend bool) tea.Cmd {
	ctx, svc := m.ctx, m.auth
	return func() tea.Msg {
		res, err := svc.Check(ctx)
		if err != nil || !res.Valid {
			return sessionCheckedMsg{result: res, err: err}
		}

		refreshed := false
		if extend {
			should, err := svc.Sessions().ShouldRefresh(ctx)
			if err != nil {
				return sessionCheckedMsg{result: res, err: err}
			}
			if should {
				if refreshed, err = svc.Refresh(ctx); err != nil {
					return sessionCheckedMsg{result: res, err: err}
				}
			}
		}

		st, err := svc.Status(ctx)
		return sessionCheckedMsg{result: res, status: st, refreshed: refreshed, err: err}
	}
}

func (m Model) runSchedule(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return scheduleLoadedMsg{err: op(ctx)}
	}
}

// View renders the current mode
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeStartup:
		return titleStyle.Render("Visit Recorder") + "\n" + dimStyle.Render("  Checking session...")
	case modeLogin:
		return m.viewLogin()
	case modeConfirm:
		return m.viewConfirm()
	}
	return m.viewSchedule()
}

func (m Model) viewConfirm() string {
	content := fmt.Sprintf("%s\n\n%s",
		m.pending.prompt,
		dimStyle.Render("y: confirm  n/Esc: back"),
	)
	box := confirmStyle.Render(content)
	return m.viewSchedule() + "\n" + box
}

func visitLabel(a model.Appointment) string {
	name := strings.TrimSpace(a.PatientName)
	if name == "" {
		name = "Appointment " + a.ID
	}
	return name
}
