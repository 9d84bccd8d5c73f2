package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/glitchlobby/lobby-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Create(username, password string) (models.User, error)
	GetByID(id int64) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	List() ([]models.User, error)
	Delete(id int64) error
}

// UserService provides business logic for account management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Create registers a new user, hashing their password. Username uniqueness
// is enforced by the UNIQUE constraint rather than a lookup, so concurrent
// registrations of the same name cannot race past each other.
func (s *UserService) Create(username, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	res, err := s.db.Exec("INSERT INTO users(username, password_hash) VALUES(?, ?)", user.Username, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(id int64) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with ID %d not found", id)
		}
		return models.User{}, err
	}
	return user, nil
}

// getByUsername retrieves a single user by username, including the password hash.
func (s *UserService) getByUsername(username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials. An unknown username and a
// wrong password both come back as ErrInvalidCredentials so that login
// responses cannot be used to enumerate accounts.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	user, err := s.getByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// List returns every registered user, id and username only.
func (s *UserService) List() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, username FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Delete removes a user. The sessions table cascades on user deletion, so
// any session bound to the user dies in the same statement. Deleting an
// absent user is not an error.
func (s *UserService) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Debug().Int64("user_id", id).Msg("delete affected no rows")
	}
	return nil
}

// isUniqueViolation reports whether err is the SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
