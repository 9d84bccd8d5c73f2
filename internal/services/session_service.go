package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glitchlobby/lobby-be/internal/models"
)

// SessionServiceProvider defines the interface for session storage.
type SessionServiceProvider interface {
	Create() (string, error)
	Get(token string) (models.Session, error)
	SetUser(token string, userID int64) error
	Destroy(token string) error
	DeleteExpired() (int64, error)
}

// SessionService stores sessions as durable rows so that logins survive a
// process restart. Tokens are opaque; signing for the cookie happens in the
// auth package, which only ever hands the raw token down here.
type SessionService struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSessionService creates a new SessionService with the given session lifetime.
func NewSessionService(db *sql.DB, ttl time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl}
}

// Create inserts a fresh anonymous session and returns its token.
func (s *SessionService) Create() (string, error) {
	token := uuid.New().String()
	expires := time.Now().Add(s.ttl).Unix()

	_, err := s.db.Exec("INSERT INTO sessions(token, user_id, expires_at) VALUES(?, NULL, ?)", token, expires)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Get looks a session up by token. Expired sessions are deleted on the way
// out and reported as missing.
func (s *SessionService) Get(token string) (models.Session, error) {
	var (
		session models.Session
		userID  sql.NullInt64
		expires int64
	)
	row := s.db.QueryRow("SELECT token, user_id, expires_at FROM sessions WHERE token = ?", token)
	if err := row.Scan(&session.Token, &userID, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	session.ExpiresAt = time.Unix(expires, 0)
	if userID.Valid {
		session.UserID = userID.Int64
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.Destroy(token); err != nil {
			log.Warn().Err(err).Msg("failed to prune expired session")
		}
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// SetUser binds a user to the session, promoting it to authenticated.
func (s *SessionService) SetUser(token string, userID int64) error {
	res, err := s.db.Exec("UPDATE sessions SET user_id = ? WHERE token = ?", userID, token)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Destroy removes the session row. Destroying an absent session is not an error.
func (s *SessionService) Destroy(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// DeleteExpired prunes every expired session and returns how many rows went.
func (s *SessionService) DeleteExpired() (int64, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
