package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ChrozaGaming/sbpappv2/internal/locate"
	"github.com/ChrozaGaming/sbpappv2/internal/session"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewDashboard
	viewAbsensi
	viewUsers
)

// guardDoneMsg carries the outcome of a session check made on the way
// into a protected view.
type guardDoneMsg struct {
	target view
	sess   domain.Session
	err    error
}

// App is the root Bubbletea model. It owns navigation and runs the
// session guard before every protected view; the sub-models never see
// an expired session.
type App struct {
	store *session.Store
	guard *session.Guard
	log   zerolog.Logger

	view     view
	auth     authModel
	register registerModel
	dash     dashboardModel
	absensi  absensiModel
	users    usersModel

	sess     domain.Session
	checking bool

	width  int
	height int
}

// NewApp wires the screens together. When a stored session exists the
// first guard check runs from Init and lands on the dashboard; otherwise
// the login flow shows.
func NewApp(deps Deps) App {
	return App{
		store:    deps.Store,
		guard:    deps.Guard,
		log:      deps.Log,
		auth:     newAuthModel(deps.Client, deps.Store, deps.Log),
		register: newRegisterModel(deps.Client),
		dash:     newDashboardModel(deps.Client),
		absensi:  newAbsensiModel(deps.Client, deps.Locator, deps.HealthGate),
		users:    newUsersModel(deps.Client),
	}
}

// Deps carries everything the screens need.
type Deps struct {
	Client     *client.Client
	Store      *session.Store
	Guard      *session.Guard
	Locator    locate.Locator
	HealthGate string
	Log        zerolog.Logger
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.auth.Init()}
	if _, ok := a.store.Get(); ok {
		a.checking = true
		cmds = append(cmds, a.checkSession(viewDashboard))
	}
	return tea.Batch(cmds...)
}

// checkSession revalidates the stored token against the backend before
// entering target. Any failure, expired token or unreachable server
// alike, evicts the session.
func (a App) checkSession(target view) tea.Cmd {
	g := a.guard
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		sess, err := g.Check(ctx)
		return guardDoneMsg{target: target, sess: sess, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.auth, _ = a.auth.Update(msg)
		a.dash, _ = a.dash.Update(msg)
		return a, nil

	case guardDoneMsg:
		a.checking = false
		if msg.err != nil {
			// Session evicted by the guard; back to a fresh login flow.
			a.auth = newAuthModel(a.auth.client, a.store, a.log)
			a.view = viewLogin
			return a, a.auth.Init()
		}
		a.sess = msg.sess
		return a.enterView(msg.target)

	case absensiClosedMsg:
		a.checking = true
		return a, a.checkSession(viewDashboard)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.checking {
			return a, nil
		}

		switch a.view {
		case viewLogin:
			switch msg.String() {
			case "ctrl+r":
				a.view = viewRegister
				a.register = newRegisterModel(a.auth.client)
				return a, a.register.Init()
			case "esc":
				return a, tea.Quit
			}

		case viewRegister:
			if msg.String() == "esc" {
				a.view = viewLogin
				return a, a.auth.Init()
			}

		case viewDashboard:
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "a", "2":
				a.checking = true
				return a, a.checkSession(viewAbsensi)
			case "u", "3":
				a.checking = true
				return a, a.checkSession(viewUsers)
			case "l":
				if err := a.guard.Logout(); err != nil {
					a.log.Error().Err(err).Msg("logout")
				}
				a.sess = domain.Session{}
				a.auth = newAuthModel(a.auth.client, a.store, a.log)
				a.view = viewLogin
				return a, a.auth.Init()
			}

		case viewAbsensi:
			if msg.String() == "esc" && !a.absensi.busy {
				a.checking = true
				return a, a.checkSession(viewDashboard)
			}

		case viewUsers:
			if msg.String() == "esc" && !a.users.busy && !a.users.confirming && a.users.created == nil {
				a.checking = true
				return a, a.checkSession(viewDashboard)
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.auth, cmd = a.auth.Update(msg)
		if a.auth.authenticated() {
			a.checking = true
			return a, tea.Batch(cmd, a.checkSession(viewDashboard))
		}
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewDashboard:
		a.dash, cmd = a.dash.Update(msg)
	case viewAbsensi:
		a.absensi, cmd = a.absensi.Update(msg)
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	}
	return a, cmd
}

// enterView switches to a protected view after a successful guard check.
func (a App) enterView(target view) (tea.Model, tea.Cmd) {
	a.view = target
	var cmd tea.Cmd
	switch target {
	case viewDashboard:
		a.dash, cmd = a.dash.enter(a.sess.User)
	case viewAbsensi:
		a.absensi, cmd = a.absensi.enter(a.sess.User, a.sess.Token)
	case viewUsers:
		a.users = a.users.enter()
	}
	return a, cmd
}

func (a App) View() string {
	var body, help string

	switch a.view {
	case viewLogin:
		body = a.auth.View()
		help = " " + helpEntry("enter", "lanjut") + "  " + helpEntry("ctrl+r", "registrasi") + "  " + helpEntry("esc", "keluar")
	case viewRegister:
		body = a.register.View()
		help = " " + helpEntry("enter", "daftar") + "  " + helpEntry("tab", "pindah kolom") + "  " + helpEntry("esc", "login")
	case viewDashboard:
		body = a.dash.View()
		help = " " + helpEntry("a", "absensi") + "  " + helpEntry("u", "users") + "  " + helpEntry("l", "logout") + "  " + helpEntry("q", "keluar")
	case viewAbsensi:
		body = a.absensi.View()
		help = " " + helpEntry("tab", "ganti status") + "  " + helpEntry("enter", "absen") + "  " + helpEntry("esc", "kembali")
	case viewUsers:
		body = a.users.View()
		help = " " + helpEntry("enter", "lanjut") + "  " + helpEntry("esc", "kembali")
	}

	if a.checking {
		body = boxStyle.Render(dimStyle.Render("Memvalidasi sesi…"))
		help = ""
	}

	header := " " + accentStyle.Render("SBP") + " " + dimStyle.Render("App")
	if a.sess.Valid() && a.view != viewLogin && a.view != viewRegister {
		header += "  " + metaStyle.Render(a.sess.User.Email)
	}

	if a.height > 0 {
		// Chrome: header(1) + blank(1) + help(1).
		body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")
	}

	return header + "\n" + body + "\n" + help
}
