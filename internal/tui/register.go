package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/internal/authflow"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
)

// registerDoneMsg carries the result of the register call.
type registerDoneMsg struct {
	err error
}

type registerField int

const (
	regFieldName registerField = iota
	regFieldEmail
	regFieldPassword
	numRegFields
)

// registerModel is the self-service account creation form.
type registerModel struct {
	client *client.Client

	inputs [numRegFields]textinput.Model
	focus  registerField

	errMsg string
	okMsg  string
	busy   bool
}

func newRegisterModel(c *client.Client) registerModel {
	name := textinput.New()
	name.Placeholder = "Nama Lengkap"
	name.CharLimit = 120
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120
	password.Width = 40

	m := registerModel{client: c}
	m.inputs[regFieldName] = name
	m.inputs[regFieldEmail] = email
	m.inputs[regFieldPassword] = password
	return m
}

func (m registerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = registerError(msg.err)
			return m, nil
		}
		m.okMsg = "Registrasi berhasil. Silakan login."
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		m.setFocus(regFieldName)
		return m, nil

	case tea.KeyMsg:
		m.errMsg = ""
		m.okMsg = ""
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % numRegFields)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + numRegFields) % numRegFields)
			return m, nil
		case "enter":
			if m.focus < regFieldPassword {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *registerModel) setFocus(f registerField) {
	m.focus = f
	for i := range m.inputs {
		if registerField(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	name := strings.TrimSpace(m.inputs[regFieldName].Value())
	email := strings.TrimSpace(m.inputs[regFieldEmail].Value())
	password := m.inputs[regFieldPassword].Value()

	if name == "" || email == "" || password == "" {
		m.errMsg = "Semua kolom wajib diisi"
		return m, nil
	}
	if len(password) < 6 {
		m.errMsg = authflow.MsgPasswordTooShort
		return m, nil
	}

	m.busy = true
	c := m.client
	return m, func() tea.Msg {
		return registerDoneMsg{err: c.Register(context.Background(), name, email, password)}
	}
}

func registerError(err error) string {
	if client.IsUnreachable(err) {
		return authflow.MsgUnreachable
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Registrasi gagal"
}

func (m registerModel) View() string {
	var b strings.Builder

	b.WriteString(dimStyle.Render("Create your") + "\n")
	b.WriteString(titleStyle.Render("SBP Account") + "\n\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n\n")
	}
	if m.okMsg != "" {
		b.WriteString(successStyle.Render(m.okMsg) + "\n\n")
	}

	labels := [numRegFields]string{"Nama Lengkap", "Email", "Password"}
	for i := registerField(0); i < numRegFields; i++ {
		b.WriteString(labelStyle.Render(labels[i]) + "\n")
		b.WriteString(m.inputs[i].View() + "\n\n")
	}

	if m.busy {
		b.WriteString(dimStyle.Render("Memproses…") + "\n")
	}
	b.WriteString(metaStyle.Render("Sudah punya akun? esc untuk kembali ke login."))

	return boxStyle.Render(b.String())
}
