package domain

import "time"

// Attendance status values understood by the backend.
const (
	StatusHadir = "hadir"
	StatusTelat = "telat"
	StatusIzin  = "izin"
)

// AttendanceStatuses lists the selectable statuses in display order.
var AttendanceStatuses = []string{StatusHadir, StatusTelat, StatusIzin}

// Wire formats for the attendance date and timestamp fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04:05"
)

// AttendanceRequest is the payload for submitting an attendance record.
// Coordinates are pointers: the backend accepts null when the device
// position is unknown.
type AttendanceRequest struct {
	TanggalAbsensi string   `json:"tanggal_absensi"`
	NamaLengkap    string   `json:"nama_lengkap"`
	Email          string   `json:"email"`
	WaktuAbsensi   string   `json:"waktu_absensi"`
	Lat            *float64 `json:"location_device_lat"`
	Lng            *float64 `json:"location_device_lng"`
	Status         string   `json:"status"`
}

// NewAttendanceRequest fills the date and timestamp fields from now.
func NewAttendanceRequest(user User, status string, now time.Time) AttendanceRequest {
	return AttendanceRequest{
		TanggalAbsensi: now.Format(DateLayout),
		NamaLengkap:    user.Name,
		Email:          user.Email,
		WaktuAbsensi:   now.Format(TimeLayout),
		Status:         status,
	}
}
