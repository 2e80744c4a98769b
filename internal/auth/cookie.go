package auth

import (
	"net/http"
	"time"
)

const CookieName = "token"

// Cookies writes the session cookie. Production requires Secure with
// SameSite=None so the cross-site web client can send it.
type Cookies struct {
	Production bool
	MaxAge     time.Duration
}

func (c Cookies) base() *http.Cookie {
	ck := &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if c.Production {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (c Cookies) Set(w http.ResponseWriter, token string) {
	ck := c.base()
	ck.Value = token
	maxAge := c.MaxAge
	if maxAge == 0 {
		maxAge = TokenTTL
	}
	ck.MaxAge = int(maxAge.Seconds())
	http.SetCookie(w, ck)
}

func (c Cookies) Clear(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}
