package rest

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/depictor/internal/entity"
)

const (
	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "_csrf_token"
)

type ctxKey struct{}

var sessionKey ctxKey

// Claims is the session token issued after the wiki OAuth handshake.
type Claims struct {
	jwt.RegisteredClaims
	// WikiToken is the OAuth access token used for edits on the user's behalf.
	WikiToken string `json:"wiki_token,omitempty"`
	CSRF      string `json:"csrf,omitempty"`
}

type session struct {
	identity *entity.Identity
	csrf     string
	// cookie is set when the browser sent the token on its own.
	cookie bool
}

// Authenticator resolves the caller of a request from a signed session token.
type Authenticator struct {
	secret     []byte
	cookieName string
	// origin is nil when no base URL is configured. A base URL that does not
	// parse leaves checkReferer set with a nil origin, so every referer fails.
	origin       *url.URL
	checkReferer bool
	logger       *logrus.Logger
}

func NewAuthenticator(secret, cookieName, baseURL string, logger *logrus.Logger) *Authenticator {
	a := &Authenticator{
		secret:       []byte(secret),
		cookieName:   cookieName,
		checkReferer: baseURL != "",
		logger:       logger,
	}
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/"
		a.origin = u
	} else if a.checkReferer {
		logger.WithError(err).Warnf("server.base_url %q is not an absolute URL, rejecting all writes", baseURL)
	}
	return a
}

// Issue signs a session token for username.
func (a *Authenticator) Issue(username, wikiToken, csrf string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("auth.jwt_secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		WikiToken: wikiToken,
		CSRF:      csrf,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Identify attaches the caller's identity to the request context. Requests without a token
// stay anonymous; requests with an invalid token are rejected.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, fromCookie := a.token(r)
		if raw == "" || len(a.secret) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject == "" {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"method": r.Method,
				"url":    r.URL.String(),
			}).Warn("rejected session token")
			writeError(w, entity.Unauthorized(entity.ErrNotLoggedIn, "invalid session token"))
			return
		}

		sess := &session{
			identity: &entity.Identity{Username: claims.Subject, AccessToken: claims.WikiToken},
			csrf:     claims.CSRF,
			cookie:   fromCookie,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// Protect rejects state-changing requests that lack the session's CSRF token or come
// from a foreign page.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		sess := sessionFrom(r.Context())
		if sess == nil {
			writeError(w, entity.Unauthorized(entity.ErrNotLoggedIn, ""))
			return
		}
		// Cookie sessions always need the CSRF token; bearer sessions only when they carry one.
		if sess.cookie || sess.csrf != "" {
			got := r.Header.Get(csrfHeader)
			if got == "" {
				got = r.FormValue(csrfFormField)
			}
			if sess.csrf == "" || subtle.ConstantTimeCompare([]byte(got), []byte(sess.csrf)) != 1 {
				writeError(w, entity.Unauthorized(errors.New("wrong CSRF token (try reloading the page)"), ""))
				return
			}
		}
		if a.checkReferer && !a.sameOrigin(r.Referer()) {
			writeError(w, entity.Unauthorized(fmt.Errorf("wrong Referer header %q", r.Referer()), ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sameOrigin reports whether referer is a page under the configured base URL.
// Scheme and host must match exactly.
func (a *Authenticator) sameOrigin(referer string) bool {
	if a.origin == nil || referer == "" {
		return false
	}
	ref, err := url.Parse(referer)
	if err != nil {
		return false
	}
	if !strings.EqualFold(ref.Scheme, a.origin.Scheme) || !strings.EqualFold(ref.Host, a.origin.Host) {
		return false
	}
	path := ref.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return strings.HasPrefix(path, a.origin.Path)
}

// token returns the raw session token and whether it came from the cookie.
func (a *Authenticator) token(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	if a.cookieName == "" {
		return "", false
	}
	if c, err := r.Cookie(a.cookieName); err == nil {
		return c.Value, true
	}
	return "", false
}

func sessionFrom(ctx context.Context) *session {
	sess, _ := ctx.Value(sessionKey).(*session)
	return sess
}

// IdentityFromContext returns the caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *entity.Identity {
	if sess := sessionFrom(ctx); sess != nil {
		return sess.identity
	}
	return nil
}

// denyFraming forbids embedding the tool's pages in frames.
func denyFraming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}
