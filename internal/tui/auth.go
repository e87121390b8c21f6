package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ChrozaGaming/sbpappv2/internal/authflow"
	"github.com/ChrozaGaming/sbpappv2/internal/session"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
)

// flowEventMsg carries an authflow event back into the reducer, either
// from a keypress or from a resolved API call.
type flowEventMsg struct {
	ev authflow.Event
}

// authModel renders the login/activation flow. All decisions live in the
// authflow reducer; this model only collects input, executes the effects
// the reducer asks for and draws the current step.
type authModel struct {
	client *client.Client
	store  *session.Store
	log    zerolog.Logger

	flow authflow.Flow

	email    textinput.Model
	password textinput.Model
	key      textinput.Model
	newpwd   textinput.Model
	confirm  textinput.Model
	// setpwdFocus selects between the new-password and confirm fields.
	setpwdFocus int

	width int
}

func newAuthModel(c *client.Client, store *session.Store, log zerolog.Logger) authModel {
	email := textinput.New()
	email.Placeholder = "example@gmail.com"
	email.CharLimit = 120
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120
	password.Width = 40

	key := textinput.New()
	key.Placeholder = "32 karakter heksadesimal"
	key.CharLimit = 64
	key.Width = 40

	newpwd := textinput.New()
	newpwd.Placeholder = "Minimal 6 karakter"
	newpwd.EchoMode = textinput.EchoPassword
	newpwd.EchoCharacter = '•'
	newpwd.CharLimit = 120
	newpwd.Width = 40

	confirm := textinput.New()
	confirm.Placeholder = "Ulangi password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 120
	confirm.Width = 40

	return authModel{
		client:   c,
		store:    store,
		log:      log,
		flow:     authflow.New(),
		email:    email,
		password: password,
		key:      key,
		newpwd:   newpwd,
		confirm:  confirm,
	}
}

func (m authModel) Init() tea.Cmd {
	return textinput.Blink
}

// authenticated reports whether the flow reached its terminal step; the
// app switches to the dashboard when it does.
func (m authModel) authenticated() bool {
	return m.flow.Step == authflow.StepAuthenticated
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case flowEventMsg:
		return m.apply(msg.ev)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.submit()
		case "tab", "shift+tab", "up", "down":
			if m.flow.Step == authflow.StepSetPassword {
				m.setpwdFocus = 1 - m.setpwdFocus
				m.syncFocus()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.flow.Step {
	case authflow.StepEmail:
		m.email, cmd = m.email.Update(msg)
	case authflow.StepPassword:
		m.password, cmd = m.password.Update(msg)
	case authflow.StepVerify:
		m.key, cmd = m.key.Update(msg)
	case authflow.StepSetPassword:
		if m.setpwdFocus == 0 {
			m.newpwd, cmd = m.newpwd.Update(msg)
		} else {
			m.confirm, cmd = m.confirm.Update(msg)
		}
	}
	return m, cmd
}

// submit feeds the current step's form into the reducer.
func (m authModel) submit() (authModel, tea.Cmd) {
	switch m.flow.Step {
	case authflow.StepEmail:
		return m.apply(authflow.SubmitEmail{Email: m.email.Value()})
	case authflow.StepPassword:
		return m.apply(authflow.SubmitPassword{Password: m.password.Value()})
	case authflow.StepVerify:
		return m.apply(authflow.SubmitLicense{Key: m.key.Value()})
	case authflow.StepSetPassword:
		if m.setpwdFocus == 0 {
			m.setpwdFocus = 1
			m.syncFocus()
			return m, nil
		}
		return m.apply(authflow.SubmitNewPassword{
			Password: m.newpwd.Value(),
			Confirm:  m.confirm.Value(),
		})
	}
	return m, nil
}

// apply runs the reducer and executes whatever effect it returns.
func (m authModel) apply(ev authflow.Event) (authModel, tea.Cmd) {
	before := m.flow.Step
	var eff authflow.Effect
	m.flow, eff = authflow.Reduce(m.flow, ev)

	if m.flow.Step != before {
		// Step transition: credentials from the finished step are done
		// with, drop them from the inputs too.
		m.password.SetValue("")
		m.key.SetValue("")
		m.newpwd.SetValue("")
		m.confirm.SetValue("")
		m.setpwdFocus = 0
	}
	m.syncFocus()

	return m, m.runEffect(eff)
}

func (m *authModel) syncFocus() {
	m.email.Blur()
	m.password.Blur()
	m.key.Blur()
	m.newpwd.Blur()
	m.confirm.Blur()
	switch m.flow.Step {
	case authflow.StepEmail:
		m.email.Focus()
	case authflow.StepPassword:
		m.password.Focus()
	case authflow.StepVerify:
		m.key.Focus()
	case authflow.StepSetPassword:
		if m.setpwdFocus == 0 {
			m.newpwd.Focus()
		} else {
			m.confirm.Focus()
		}
	}
}

// runEffect turns a reducer effect into the command that performs it.
func (m *authModel) runEffect(eff authflow.Effect) tea.Cmd {
	c := m.client
	switch eff := eff.(type) {
	case authflow.CheckEmail:
		return func() tea.Msg {
			exists, err := c.CheckEmail(context.Background(), eff.Email)
			return flowEventMsg{ev: authflow.EmailChecked{Exists: exists, Err: err}}
		}
	case authflow.ProbeLicense:
		return func() tea.Msg {
			out, err := c.Login(context.Background(), eff.Email, "")
			return flowEventMsg{ev: authflow.ProbeResolved{Outcome: out, Err: err}}
		}
	case authflow.Login:
		return func() tea.Msg {
			out, err := c.Login(context.Background(), eff.Email, eff.Password)
			return flowEventMsg{ev: authflow.LoginResolved{Outcome: out, Err: err}}
		}
	case authflow.VerifyLicense:
		return func() tea.Msg {
			resp, err := c.VerifyLicense(context.Background(), eff.Email, eff.Key)
			if err != nil {
				return flowEventMsg{ev: authflow.LicenseResolved{Err: err}}
			}
			return flowEventMsg{ev: authflow.LicenseResolved{Token: resp.Token, User: resp.User}}
		}
	case authflow.SetPassword:
		return func() tea.Msg {
			err := c.SetPassword(context.Background(), eff.Token, eff.Password)
			return flowEventMsg{ev: authflow.PasswordSaved{Err: err}}
		}
	case authflow.PersistSession:
		// Synchronous: the record must exist before the next step renders.
		if err := m.store.Set(eff.Session); err != nil {
			m.log.Error().Err(err).Msg("persist session")
		}
		return nil
	}
	return nil
}

func (m authModel) View() string {
	var b strings.Builder

	b.WriteString(dimStyle.Render("Welcome to") + "\n")
	b.WriteString(titleStyle.Render("SBP App") + "\n\n")

	if m.flow.Err != "" {
		b.WriteString(errorStyle.Render(m.flow.Err) + "\n\n")
	}

	switch m.flow.Step {
	case authflow.StepEmail:
		b.WriteString(labelStyle.Render("Email") + "\n")
		b.WriteString(m.email.View() + "\n\n")
		b.WriteString(metaStyle.Render("Masukkan email Anda terlebih dahulu.") + "\n")

	case authflow.StepPassword:
		b.WriteString(dimStyle.Render(m.flow.Email) + "\n\n")
		b.WriteString(labelStyle.Render("Password") + "\n")
		b.WriteString(m.password.View() + "\n")

	case authflow.StepVerify:
		b.WriteString(selectedStyle.Render("Verifikasi Pengguna") + "\n")
		b.WriteString(metaStyle.Render("Masukkan license key untuk melanjutkan.") + "\n\n")
		b.WriteString(dimStyle.Render(orDash(m.flow.Email)) + "\n\n")
		b.WriteString(labelStyle.Render("License Key") + "\n")
		b.WriteString(m.key.View() + "\n")

	case authflow.StepSetPassword:
		b.WriteString(dimStyle.Render(m.flow.Email) + "\n\n")
		b.WriteString(labelStyle.Render("Password Baru") + "\n")
		b.WriteString(m.newpwd.View() + "\n\n")
		b.WriteString(labelStyle.Render("Konfirmasi Password") + "\n")
		b.WriteString(m.confirm.View() + "\n")
	}

	b.WriteString("\n")
	if m.flow.Busy {
		b.WriteString(dimStyle.Render("Memproses…"))
	}

	return boxStyle.Render(b.String())
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
