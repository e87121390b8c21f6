package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// reminderMsg carries the result of the "already checked in today" lookup.
type reminderMsg struct {
	attended bool
	err      error
}

var indonesianDays = [...]string{
	"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// wib returns the Jakarta time zone. Attendance dates are always WIB
// regardless of the machine's local zone.
func wib() *time.Location {
	if loc, err := time.LoadLocation("Asia/Jakarta"); err == nil {
		return loc
	}
	return time.FixedZone("WIB", 7*3600)
}

// formatWIB renders a timestamp the way the web dashboard does, e.g.
// "Jumat, 29 Agustus 2026 14:05:09 WIB".
func formatWIB(t time.Time) string {
	t = t.In(wib())
	return fmt.Sprintf("%s, %d %s %d %02d:%02d:%02d WIB",
		indonesianDays[t.Weekday()], t.Day(), indonesianMonths[t.Month()-1],
		t.Year(), t.Hour(), t.Minute(), t.Second())
}

// dashboardModel is the landing screen after login: a greeting, a live
// WIB clock and the daily attendance reminder.
type dashboardModel struct {
	client *client.Client

	user domain.User
	now  time.Time

	// reminder state; checked flips once the lookup resolves.
	checked  bool
	attended bool

	width  int
	height int
}

func newDashboardModel(c *client.Client) dashboardModel {
	return dashboardModel{client: c, now: time.Now()}
}

// enter resets the per-visit state and kicks off the clock plus the
// attendance lookup for today.
func (m dashboardModel) enter(user domain.User) (dashboardModel, tea.Cmd) {
	m.user = user
	m.now = time.Now()
	m.checked = false
	m.attended = false
	return m, tea.Batch(clockTickCmd(), m.checkTodayCmd())
}

func (m dashboardModel) checkTodayCmd() tea.Cmd {
	c := m.client
	email := m.user.Email
	date := time.Now().In(wib()).Format(domain.DateLayout)
	return func() tea.Msg {
		attended, err := c.AttendanceToday(context.Background(), email, date)
		return reminderMsg{attended: attended, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clockTickMsg:
		m.now = time.Time(msg)
		return m, clockTickCmd()

	case reminderMsg:
		if msg.err != nil {
			// Lookup failures leave the reminder hidden; the dashboard
			// still works without it.
			return m, nil
		}
		m.checked = true
		m.attended = msg.attended
		return m, nil
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(dimStyle.Render("Selamat datang,") + "\n")
	b.WriteString(titleStyle.Render(m.user.Name) + "\n")
	b.WriteString(metaStyle.Render(m.user.Email) + "\n\n")

	b.WriteString(accentStyle.Render(formatWIB(m.now)) + "\n")

	if m.checked && !m.attended {
		b.WriteString("\n" + warnStyle.Render("BELUM ABSEN HARI INI") + "\n")
		b.WriteString(dimStyle.Render("Tekan a untuk absen sekarang.") + "\n")
	} else if m.checked && m.attended {
		b.WriteString("\n" + successStyle.Render("Anda sudah absen hari ini.") + "\n")
	}

	return boxStyle.Render(b.String())
}
