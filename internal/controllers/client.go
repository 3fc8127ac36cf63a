package controllers

import (
	"eigenkey/internal/models"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	deviceCookieName = "ef_device"
	deviceHeaderName = "X-Device-ID"
	maxDeviceIDLen   = 64
)

// clientIP prefers the first X-Forwarded-For hop, then the connection peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return models.UnknownValue
}

// deviceID returns the session device id from the cookie or header. A new
// one is issued as a session cookie when the client has none or sends one
// that is not a short token.
func deviceID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(deviceCookieName); err == nil && validDeviceID(c.Value) {
		return c.Value
	}
	if id := strings.TrimSpace(r.Header.Get(deviceHeaderName)); validDeviceID(id) {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func validDeviceID(id string) bool {
	if id == "" || len(id) > maxDeviceIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func clientInfo(w http.ResponseWriter, r *http.Request, page string) models.ClientInfo {
	ua := r.UserAgent()
	if ua == "" {
		ua = models.UnknownValue
	}
	return models.ClientInfo{
		IP:        clientIP(r),
		UserAgent: ua,
		DeviceID:  deviceID(w, r),
		Page:      page,
	}
}
