package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/internal/authflow"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// userCreatedMsg carries the result of the create-user call.
type userCreatedMsg struct {
	created *client.CreatedUser
	err     error
}

type usersField int

const (
	usersFieldName usersField = iota
	usersFieldEmail
	usersFieldRole
	numUsersFields
)

// usersModel is the superadmin screen for creating accounts. A created
// account comes back with its activation key, which stays on screen
// until dismissed so it can be copied and handed to the employee.
type usersModel struct {
	client *client.Client

	name  textinput.Model
	email textinput.Model
	focus usersField

	roleIdx int

	confirming bool
	busy       bool
	errMsg     string

	created *client.CreatedUser
	copied  bool
}

func newUsersModel(c *client.Client) usersModel {
	name := textinput.New()
	name.Placeholder = "Nama Lengkap"
	name.CharLimit = 120
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120
	email.Width = 40

	return usersModel{client: c, name: name, email: email}
}

// enter resets the form for a fresh visit.
func (m usersModel) enter() usersModel {
	m.name.SetValue("")
	m.email.SetValue("")
	m.roleIdx = 0
	m.confirming = false
	m.busy = false
	m.errMsg = ""
	m.created = nil
	m.copied = false
	m.setFocus(usersFieldName)
	return m
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case userCreatedMsg:
		m.busy = false
		m.confirming = false
		if msg.err != nil {
			m.errMsg = createUserError(msg.err)
			return m, nil
		}
		m.created = msg.created
		return m, nil

	case tea.KeyMsg:
		if m.created != nil {
			switch msg.String() {
			case "c":
				if m.created.LicenseKey != "" {
					if err := clipboard.WriteAll(m.created.LicenseKey); err == nil {
						m.copied = true
					}
				}
				return m, nil
			default:
				// Dismiss and start over with a blank form.
				return m.enter(), nil
			}
		}

		if m.confirming {
			switch msg.String() {
			case "y", "enter":
				return m.submit()
			default:
				m.confirming = false
				return m, nil
			}
		}

		m.errMsg = ""
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % numUsersFields)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + numUsersFields) % numUsersFields)
			return m, nil
		case "left":
			if m.focus == usersFieldRole {
				m.roleIdx = (m.roleIdx - 1 + len(domain.Roles)) % len(domain.Roles)
				return m, nil
			}
		case "right":
			if m.focus == usersFieldRole {
				m.roleIdx = (m.roleIdx + 1) % len(domain.Roles)
				return m, nil
			}
		case "enter":
			if m.focus < usersFieldRole {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			name := strings.TrimSpace(m.name.Value())
			email := strings.TrimSpace(m.email.Value())
			if name == "" || email == "" {
				m.errMsg = "Nama dan email wajib diisi"
				return m, nil
			}
			m.confirming = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case usersFieldName:
		m.name, cmd = m.name.Update(msg)
	case usersFieldEmail:
		m.email, cmd = m.email.Update(msg)
	}
	return m, cmd
}

func (m *usersModel) setFocus(f usersField) {
	m.focus = f
	m.name.Blur()
	m.email.Blur()
	switch f {
	case usersFieldName:
		m.name.Focus()
	case usersFieldEmail:
		m.email.Focus()
	}
}

func (m usersModel) submit() (usersModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	c := m.client
	name := strings.TrimSpace(m.name.Value())
	email := strings.TrimSpace(m.email.Value())
	role := domain.Roles[m.roleIdx]
	return m, func() tea.Msg {
		created, err := c.CreateUser(context.Background(), name, email, role)
		return userCreatedMsg{created: created, err: err}
	}
}

func createUserError(err error) string {
	if client.IsUnreachable(err) {
		return authflow.MsgUnreachable
	}
	if client.IsStatus(err, 409) {
		return "Email sudah terdaftar"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Gagal membuat user"
}

func (m usersModel) View() string {
	if m.created != nil {
		var d strings.Builder
		d.WriteString(successStyle.Render("User berhasil dibuat") + "\n\n")
		d.WriteString(labelStyle.Render("Nama") + "  " + m.created.Name + "\n")
		d.WriteString(labelStyle.Render("Email") + " " + m.created.Email + "\n")
		d.WriteString(labelStyle.Render("Role") + "  " + m.created.Roles + "\n")
		if m.created.LicenseKey != "" {
			d.WriteString("\n" + labelStyle.Render("License Key") + "\n")
			d.WriteString(accentStyle.Render(m.created.LicenseKey) + "\n")
			if m.copied {
				d.WriteString(successStyle.Render("Tersalin ke clipboard.") + "\n")
			} else {
				d.WriteString(metaStyle.Render("Tekan c untuk menyalin.") + "\n")
			}
		}
		d.WriteString("\n" + metaStyle.Render("Tombol lain untuk menutup."))
		return overlayStyle.Render(d.String())
	}

	if m.confirming {
		var d strings.Builder
		d.WriteString(titleStyle.Render("Buat user ini?") + "\n\n")
		d.WriteString(strings.TrimSpace(m.name.Value()) + "\n")
		d.WriteString(strings.TrimSpace(m.email.Value()) + "\n")
		d.WriteString(domain.Roles[m.roleIdx] + "\n\n")
		d.WriteString(helpEntry("y", "buat") + "  " + helpEntry("esc", "batal"))
		return overlayStyle.Render(d.String())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Manajemen User") + "\n\n")

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n\n")
	}

	b.WriteString(labelStyle.Render("Nama Lengkap") + "\n")
	b.WriteString(m.name.View() + "\n\n")
	b.WriteString(labelStyle.Render("Email") + "\n")
	b.WriteString(m.email.View() + "\n\n")

	b.WriteString(labelStyle.Render("Role") + "\n")
	var opts []string
	for i, r := range domain.Roles {
		if i == m.roleIdx {
			opts = append(opts, selectedStyle.Render("▸ "+r))
		} else {
			opts = append(opts, dimStyle.Render("  "+r))
		}
	}
	b.WriteString(strings.Join(opts, "   ") + "\n\n")

	if m.busy {
		b.WriteString(dimStyle.Render("Memproses…"))
	} else {
		b.WriteString(helpEntry("enter", "lanjut") + "  " + helpEntry("tab", "pindah kolom"))
	}

	return boxStyle.Render(b.String())
}
