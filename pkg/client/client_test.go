package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

func TestCheckEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/check-email", r.URL.Path)
		assert.Equal(t, "bob@x.com", r.URL.Query().Get("email"))
		json.NewEncoder(w).Encode(map[string]bool{"exists": true})
	}))
	defer srv.Close()

	exists, err := New(srv.URL).CheckEmail(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoginAuthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob@x.com", body["email"])
		json.NewEncoder(w).Encode(map[string]any{
			"token": "abc123",
			"user":  map[string]string{"name": "Bob", "email": "bob@x.com"},
		})
	}))
	defer srv.Close()

	out, err := New(srv.URL).Login(context.Background(), "bob@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, LoginAuthenticated, out.Kind)
	assert.Equal(t, "abc123", out.Token)
	assert.Equal(t, "bob@x.com", out.User.Email)
}

func TestLoginLicenseRequiredByStatusAndFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"license_required": true,
			"message":          "whatever text the backend felt like sending",
		})
	}))
	defer srv.Close()

	out, err := New(srv.URL).Login(context.Background(), "new@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, LoginLicenseRequired, out.Kind)
	assert.Equal(t, "new@x.com", out.Email)
}

func TestLoginAcceptedWithoutFlagIsNotActivation(t *testing.T) {
	// A 202 without the license_required flag must not be mistaken for
	// the activation branch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"token": "abc123",
			"user":  map[string]string{"name": "Bob", "email": "bob@x.com"},
		})
	}))
	defer srv.Close()

	out, err := New(srv.URL).Login(context.Background(), "bob@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, LoginAuthenticated, out.Kind)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Password salah"})
	}))
	defer srv.Close()

	out, err := New(srv.URL).Login(context.Background(), "bob@x.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, LoginRejected, out.Kind)
	assert.Equal(t, "Password salah", out.Message)
}

func TestLoginRejectedWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	out, err := New(srv.URL).Login(context.Background(), "bob@x.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, LoginRejected, out.Kind)
	assert.Equal(t, "Login gagal", out.Message)
}

func TestLoginMalformedSuccessIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"hello": "world"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "bob@x.com", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response format")
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := New(srv.URL)

	_, err := c.CheckEmail(context.Background(), "bob@x.com")
	assert.True(t, IsUnreachable(err), "got %v", err)

	_, err = c.Login(context.Background(), "bob@x.com", "secret")
	assert.True(t, IsUnreachable(err), "got %v", err)
}

func TestVerifyLicense(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/license/verify", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ABC", body["key"])
		json.NewEncoder(w).Encode(map[string]any{
			"token": "abc123",
			"user":  map[string]string{"name": "Bob", "email": "bob@x.com"},
		})
	}))
	defer srv.Close()

	resp, err := New(srv.URL).VerifyLicense(context.Background(), "bob@x.com", " ABC ")
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.Token)
	assert.Equal(t, "Bob", resp.User.Name)
}

func TestSetPasswordSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := New(srv.URL).SetPassword(context.Background(), "abc123", "newsecret")
	require.NoError(t, err)
}

func TestMeUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Me(context.Background(), "stale")
	assert.True(t, IsStatus(err, 401), "got %v", err)
}

func TestSubmitAttendanceDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Anda sudah absen pada tanggal ini."})
	}))
	defer srv.Close()

	req := domain.AttendanceRequest{
		TanggalAbsensi: "2026-08-29",
		NamaLengkap:    "Bob",
		Email:          "bob@x.com",
		WaktuAbsensi:   "2026-08-29 08:00:00",
		Status:         domain.StatusHadir,
	}
	err := New(srv.URL).SubmitAttendance(context.Background(), "abc123", req)
	require.Error(t, err)
	assert.True(t, IsStatus(err, 409), "got %v", err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Anda sudah absen pada tanggal ini.", apiErr.Message)
}

func TestAttendanceToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/absensi/today", r.URL.Path)
		assert.Equal(t, "bob@x.com", r.URL.Query().Get("email"))
		assert.Equal(t, "2026-08-29", r.URL.Query().Get("tanggal"))
		json.NewEncoder(w).Encode(map[string]bool{"exists": false})
	}))
	defer srv.Close()

	attended, err := New(srv.URL).AttendanceToday(context.Background(), "bob@x.com", "2026-08-29")
	require.NoError(t, err)
	assert.False(t, attended)
}

func TestCreateUserReturnsLicenseKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.RolePegawaiKantor, body["roles"])
		json.NewEncoder(w).Encode(map[string]string{
			"name":        body["name"],
			"email":       body["email"],
			"roles":       body["roles"],
			"license_key": "ABCDEF0123456789ABCDEF0123456789",
		})
	}))
	defer srv.Close()

	created, err := New(srv.URL).CreateUser(context.Background(), "Bob", "bob@x.com", domain.RolePegawaiKantor)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF0123456789ABCDEF0123456789", created.LicenseKey)
}

func TestDeviceIDHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dev-42", r.Header.Get("X-Device-Id"))
		json.NewEncoder(w).Encode(map[string]bool{"exists": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetDeviceID("dev-42")
	_, err := c.CheckEmail(context.Background(), "bob@x.com")
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	assert.True(t, New(ok.URL).Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.False(t, New(down.URL).Health(context.Background()))

	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gone.Close()
	assert.False(t, New(gone.URL).Health(context.Background()))
}
