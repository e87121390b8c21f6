package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ChrozaGaming/sbpappv2/internal/authflow"
	"github.com/ChrozaGaming/sbpappv2/internal/config"
	"github.com/ChrozaGaming/sbpappv2/internal/locate"
	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

const healthProbeTimeout = 4 * time.Second

type (
	// healthResultMsg reports a finished probe. seq ties the result to
	// the visit that started it so a late answer cannot revive a probe
	// the timeout already failed.
	healthResultMsg struct {
		seq int
		ok  bool
	}
	healthTimeoutMsg struct {
		seq int
	}
	// attendDoneMsg reports the submit round trip, location included.
	attendDoneMsg struct {
		denied bool
		err    error
	}
	// absensiClosedMsg asks the app to return to the dashboard.
	absensiClosedMsg struct{}
)

type healthState int

const (
	healthPending healthState = iota
	healthOK
	healthDown
)

// absensiModel is the attendance form: pick a status, submit once per
// day. The backend is probed on entry and the device location is
// resolved on submit.
type absensiModel struct {
	client  *client.Client
	locator locate.Locator
	gate    string

	user  domain.User
	token string

	statusIdx int
	health    healthState
	probeSeq  int

	busy       bool
	showDenied bool
	errMsg     string
	okMsg      string
}

func newAbsensiModel(c *client.Client, locator locate.Locator, gate string) absensiModel {
	return absensiModel{client: c, locator: locator, gate: gate}
}

// enter resets the per-visit state and starts a fresh health probe.
func (m absensiModel) enter(user domain.User, token string) (absensiModel, tea.Cmd) {
	m.user = user
	m.token = token
	m.statusIdx = 0
	m.busy = false
	m.showDenied = false
	m.errMsg = ""
	m.okMsg = ""
	return m.startProbe()
}

func (m absensiModel) startProbe() (absensiModel, tea.Cmd) {
	m.health = healthPending
	m.probeSeq++
	seq := m.probeSeq
	c := m.client
	probe := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
		defer cancel()
		return healthResultMsg{seq: seq, ok: c.Health(ctx)}
	}
	timeout := tea.Tick(healthProbeTimeout, func(time.Time) tea.Msg {
		return healthTimeoutMsg{seq: seq}
	})
	return m, tea.Batch(probe, timeout)
}

func (m absensiModel) Update(msg tea.Msg) (absensiModel, tea.Cmd) {
	switch msg := msg.(type) {
	case healthResultMsg:
		if msg.seq != m.probeSeq || m.health != healthPending {
			return m, nil
		}
		if msg.ok {
			m.health = healthOK
		} else {
			m.health = healthDown
		}
		return m, nil

	case healthTimeoutMsg:
		if msg.seq != m.probeSeq || m.health != healthPending {
			return m, nil
		}
		m.health = healthDown
		return m, nil

	case attendDoneMsg:
		m.busy = false
		if msg.denied {
			m.showDenied = true
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = attendError(msg.err)
			return m, nil
		}
		m.okMsg = "Absensi berhasil dicatat."
		return m, nil

	case tea.KeyMsg:
		if m.showDenied {
			// Any key closes the dialog and leaves the page.
			return m, func() tea.Msg { return absensiClosedMsg{} }
		}
		m.errMsg = ""
		m.okMsg = ""
		switch msg.String() {
		case "left", "shift+tab":
			m.statusIdx = (m.statusIdx - 1 + len(domain.AttendanceStatuses)) % len(domain.AttendanceStatuses)
			return m, nil
		case "right", "tab":
			m.statusIdx = (m.statusIdx + 1) % len(domain.AttendanceStatuses)
			return m, nil
		case "r":
			if m.health == healthDown {
				return m.startProbe()
			}
			return m, nil
		case "enter":
			return m.submit()
		}
	}
	return m, nil
}

func (m absensiModel) submit() (absensiModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch m.health {
	case healthPending:
		m.errMsg = "Memeriksa koneksi server, tunggu sebentar."
		return m, nil
	case healthDown:
		if m.gate == config.HealthGateBlock {
			m.errMsg = authflow.MsgUnreachable
			return m, nil
		}
	}

	m.busy = true
	c := m.client
	locator := m.locator
	user := m.user
	token := m.token
	status := domain.AttendanceStatuses[m.statusIdx]
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		loc := locator.Current(ctx)
		if !loc.Granted() {
			return attendDoneMsg{denied: true}
		}

		req := domain.NewAttendanceRequest(user, status, time.Now().In(wib()))
		req.Lat, req.Lng = &loc.Lat, &loc.Lng
		return attendDoneMsg{err: c.SubmitAttendance(ctx, token, req)}
	}
}

func attendError(err error) string {
	if client.IsUnreachable(err) {
		return authflow.MsgUnreachable
	}
	if client.IsStatus(err, 409) {
		return "Anda sudah absen pada tanggal ini."
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Gagal menyimpan absensi"
}

func statusLabel(s string) string {
	switch s {
	case domain.StatusHadir:
		return "Hadir"
	case domain.StatusTelat:
		return "Telat"
	case domain.StatusIzin:
		return "Izin"
	}
	return s
}

func (m absensiModel) View() string {
	if m.showDenied {
		var d strings.Builder
		d.WriteString(errorStyle.Render("Akses lokasi ditolak") + "\n\n")
		d.WriteString("Absensi membutuhkan lokasi perangkat.\n")
		d.WriteString("Izinkan akses lokasi lalu coba lagi.\n\n")
		d.WriteString(metaStyle.Render("Tekan tombol apa saja untuk kembali."))
		return overlayStyle.Render(d.String())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Absensi Harian") + "\n")
	b.WriteString(metaStyle.Render(formatWIB(time.Now())) + "\n\n")

	switch m.health {
	case healthPending:
		b.WriteString(dimStyle.Render("Memeriksa koneksi server…") + "\n\n")
	case healthDown:
		if m.gate == config.HealthGateBlock {
			b.WriteString(errorStyle.Render(authflow.MsgUnreachable) + "\n")
			b.WriteString(dimStyle.Render("Tekan r untuk mencoba lagi.") + "\n\n")
		} else {
			b.WriteString(warnStyle.Render("Server tidak merespons, absensi mungkin gagal.") + "\n\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n\n")
	}
	if m.okMsg != "" {
		b.WriteString(successStyle.Render(m.okMsg) + "\n\n")
	}

	b.WriteString(labelStyle.Render("Status") + "\n")
	var opts []string
	for i, s := range domain.AttendanceStatuses {
		label := statusLabel(s)
		if i == m.statusIdx {
			opts = append(opts, selectedStyle.Render("▸ "+label))
		} else {
			opts = append(opts, dimStyle.Render("  "+label))
		}
	}
	b.WriteString(strings.Join(opts, "   ") + "\n\n")

	if m.busy {
		b.WriteString(dimStyle.Render("Mengirim absensi…") + "\n")
	} else {
		b.WriteString(helpEntry("tab", "ganti status") + "  " + helpEntry("enter", "absen"))
	}

	return boxStyle.Render(b.String())
}
