package echoweb

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/student"
)

const (
	sessionCookieName = "flavorsense_session"
	contextSessionKey = "session"
)

// Session is the per-browser authentication state, carried by a signed cookie.
// The student and staff tracks are independent.
type Session struct {
	jwt.RegisteredClaims
	StudentEmail string `json:"student_email,omitempty"`
	StudentName  string `json:"student_name,omitempty"`
	Staff        bool   `json:"staff,omitempty"`
}

func (s *Session) IsStudent() bool { return s.StudentEmail != "" }
func (s *Session) IsEmpty() bool   { return !s.IsStudent() && !s.Staff }

func (s *Session) Student() student.Student {
	return student.Student{Name: s.StudentName, Email: s.StudentEmail}
}

type sessionManager struct {
	key    []byte
	issuer string
	maxAge time.Duration
	secure bool
}

func newSessionManager(conf *core.Config) *sessionManager {
	return &sessionManager{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		maxAge: conf.Server.SessionMaxAge,
		secure: conf.Server.SecureCookies,
	}
}

func (sm *sessionManager) sign(sess *Session) (string, error) {
	now := time.Now()
	claims := *sess
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    sm.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sm.maxAge)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.key)
}

func (sm *sessionManager) parse(token string) (*Session, error) {
	sess := new(Session)
	_, err := jwt.ParseWithClaims(
		token, sess,
		func(*jwt.Token) (interface{}, error) { return sm.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sm.issuer),
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// load returns the session of the request. Missing, tampered or expired cookies read as anonymous.
func (sm *sessionManager) load(ctx echo.Context) *Session {
	cookie, err := ctx.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return new(Session)
	}
	sess, err := sm.parse(cookie.Value)
	if err != nil {
		ctx.Logger().Debugf("discarding session cookie: %v", err)
		return new(Session)
	}
	return sess
}

// save writes sess back to the browser; an empty session deletes the cookie.
func (sm *sessionManager) save(ctx echo.Context, sess *Session) error {
	ctx.Set(contextSessionKey, sess)

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.IsEmpty() {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		token, err := sm.sign(sess)
		if err != nil {
			return errors.Wrap(err, "signing session")
		}
		cookie.Value = token
		cookie.MaxAge = int(sm.maxAge.Seconds())
		cookie.Expires = time.Now().Add(sm.maxAge)
	}
	ctx.SetCookie(cookie)
	return nil
}

func (sm *sessionManager) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(contextSessionKey, sm.load(ctx))
		return next(ctx)
	}
}

func getSession(ctx echo.Context) *Session {
	if sess, ok := ctx.Get(contextSessionKey).(*Session); ok {
		return sess
	}
	return new(Session)
}
