package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"first forwarded hop", "203.0.113.1, 10.0.0.1", "10.0.0.2:1234", "203.0.113.1"},
		{"single forwarded", " 203.0.113.5 ", "10.0.0.2:1234", "203.0.113.5"},
		{"remote addr host", "", "198.51.100.3:4321", "198.51.100.3"},
		{"ipv6 remote", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"bare remote", "", "pipe", "pipe"},
		{"nothing", "", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestDeviceID_FromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(deviceHeaderName, "header-device")
	rr := httptest.NewRecorder()

	assert.Equal(t, "header-device", deviceID(rr, req))
	assert.Empty(t, rr.Result().Cookies())
}

func TestDeviceID_CookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(deviceHeaderName, "header-device")
	req.AddCookie(&http.Cookie{Name: deviceCookieName, Value: "cookie-device"})

	assert.Equal(t, "cookie-device", deviceID(httptest.NewRecorder(), req))
}

func TestDeviceID_GeneratesUUID(t *testing.T) {
	rr := httptest.NewRecorder()
	id := deviceID(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, deviceID(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestDeviceID_RejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
	}{
		{"oversized header", "", strings.Repeat("x", 1<<20)},
		{"oversized cookie", strings.Repeat("x", maxDeviceIDLen+1), ""},
		{"header with spaces", "", "my device"},
		{"header with quotes", "", `a"b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: deviceCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(deviceHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()

			id := deviceID(rr, req)

			_, err := uuid.Parse(id)
			require.NoError(t, err)
			cookies := rr.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, id, cookies[0].Value)
		})
	}
}

func TestDeviceID_AcceptsIssuedUUID(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: deviceCookieName, Value: id})

	assert.Equal(t, id, deviceID(httptest.NewRecorder(), req))
}

func TestClientInfo_UnknownUserAgent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Del("User-Agent")

	info := clientInfo(httptest.NewRecorder(), req, "signal")
	assert.Equal(t, "unknown", info.UserAgent)
	assert.Equal(t, "signal", info.Page)
}
