package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

func filledUsersForm() usersModel {
	m := newUsersModel(nil).enter()
	for _, r := range "Bob" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	for _, r := range "bob@x.com" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab}) // role selector
	return m
}

func TestUsersEmptyFormRejected(t *testing.T) {
	m := newUsersModel(nil).enter()
	m.setFocus(usersFieldRole)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("empty form must not reach confirmation")
	}
	if !strings.Contains(m.View(), "Nama dan email wajib diisi") {
		t.Errorf("expected required-fields message, got:\n%s", m.View())
	}
}

func TestUsersRoleCycling(t *testing.T) {
	m := filledUsersForm()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := domain.Roles[m.roleIdx]; got != domain.RolePegawaiKantor {
		t.Fatalf("role = %q, want pegawaikantor", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := domain.Roles[m.roleIdx]; got != domain.RolePegawaiGudang {
		t.Fatalf("role = %q, cycling must wrap", got)
	}
}

func TestUsersConfirmBeforeSubmit(t *testing.T) {
	m := filledUsersForm()
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Fatal("the first enter only opens the confirmation")
	}
	if !m.confirming {
		t.Fatal("expected confirmation overlay")
	}
	view := m.View()
	if !strings.Contains(view, "Buat user ini?") {
		t.Errorf("expected confirmation prompt, got:\n%s", view)
	}
	if !strings.Contains(view, "bob@x.com") {
		t.Errorf("confirmation must echo the form, got:\n%s", view)
	}
}

func TestUsersConfirmCancel(t *testing.T) {
	m := filledUsersForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if cmd != nil {
		t.Fatal("cancel must not submit")
	}
	if m.confirming {
		t.Error("esc must close the confirmation")
	}
	if m.name.Value() != "Bob" {
		t.Error("cancel must keep the form")
	}
}

func TestUsersConfirmSubmits(t *testing.T) {
	m := filledUsersForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	if cmd == nil {
		t.Fatal("confirming must submit")
	}
	if !m.busy {
		t.Error("submit must mark the form busy")
	}
}

func TestUsersDuplicateEmail(t *testing.T) {
	m := filledUsersForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m, _ = m.Update(userCreatedMsg{err: &client.APIError{StatusCode: 409}})

	if !strings.Contains(m.View(), "Email sudah terdaftar") {
		t.Errorf("expected duplicate message, got:\n%s", m.View())
	}
	if m.name.Value() != "Bob" {
		t.Error("a failed create must keep the form")
	}
}

func TestUsersSuccessShowsLicenseKey(t *testing.T) {
	m := filledUsersForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m, _ = m.Update(userCreatedMsg{created: &client.CreatedUser{
		Name:       "Bob",
		Email:      "bob@x.com",
		Roles:      domain.RolePegawaiKantor,
		LicenseKey: "ABCDEF0123456789ABCDEF0123456789",
	}})

	view := m.View()
	if !strings.Contains(view, "User berhasil dibuat") {
		t.Errorf("expected success overlay, got:\n%s", view)
	}
	if !strings.Contains(view, "ABCDEF0123456789ABCDEF0123456789") {
		t.Errorf("the issued key must be on screen, got:\n%s", view)
	}
	if !strings.Contains(view, "Tekan c untuk menyalin") {
		t.Errorf("expected copy hint, got:\n%s", view)
	}
}

func TestUsersDismissSuccessResetsForm(t *testing.T) {
	m := filledUsersForm()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m, _ = m.Update(userCreatedMsg{created: &client.CreatedUser{Name: "Bob", Email: "bob@x.com"}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.created != nil {
		t.Fatal("dismissing must close the overlay")
	}
	if m.name.Value() != "" {
		t.Error("dismissing must blank the form for the next account")
	}
}
