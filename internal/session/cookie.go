package session

import (
	"net/http"
	"time"
)

const (
	CookieName = "__Host-session"
)

// CookieOptions defines how the browser session cookie is issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// normalize fills in the attributes the __Host- prefix requires.
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	o.HttpOnly = true
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// ReadCookie returns the session id sent by the browser, if it looks like
// one this gateway issued.
func ReadCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || !ValidID(c.Value) {
		return "", false
	}
	return c.Value, true
}

// SetCookie issues (or refreshes) the session cookie.
func SetCookie(w http.ResponseWriter, sessionID string, opts CookieOptions) {
	opts = opts.normalize()

	c := &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     opts.Path,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	}
	if opts.MaxAge > 0 {
		c.MaxAge = int(opts.MaxAge / time.Second)
		c.Expires = time.Now().Add(opts.MaxAge)
	}
	http.SetCookie(w, c)
}

// ClearCookie tells the browser to drop the session cookie.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
