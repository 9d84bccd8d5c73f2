package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unexpected store failures must come back as plain errors, never as one of
// the expected-condition sentinels the handlers recover from.

func TestUserService_ListPropagatesStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storeErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT id, username FROM users ORDER BY id").WillReturnError(storeErr)

	_, err = NewUserService(db).List()
	assert.ErrorIs(t, err, storeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_AuthenticatePropagatesStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storeErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT id, username, password_hash").WillReturnError(storeErr)

	_, err = NewUserService(db).Authenticate("alice", "pw1")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_GetPropagatesStoreError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storeErr := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT token, user_id, expires_at FROM sessions").WillReturnError(storeErr)

	_, err = NewSessionService(db, testTTL).Get("some-token")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
