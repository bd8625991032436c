// Package auth handles user accounts, password hashing and signed session
// cookies.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	db "github.com/JonMunkholm/stockroom/internal/database"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering an email twice.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidEmail is returned when registering a malformed address.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrUserNotFound is returned by a UserStore lookup miss.
	ErrUserNotFound = errors.New("user not found")
)

// User is an account allowed to sign in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists accounts.
type UserStore interface {
	// GetUserByEmail returns ErrUserNotFound on a miss.
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// CreateUser returns ErrUserExists when the email is taken.
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticator checks credentials against a UserStore.
type Authenticator struct {
	users UserStore
}

// NewAuthenticator creates an Authenticator over users.
func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Login returns the user when email and password match. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		logging.FromContext(ctx).Warn("login failed", "email", email)
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Register hashes password and stores a new user.
func (a *Authenticator) Register(ctx context.Context, email, password string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return a.users.CreateUser(ctx, email, hash)
}

// PostgresUserStore implements UserStore on the generated queries.
type PostgresUserStore struct {
	q *db.Queries
}

// NewPostgresUserStore wraps a pool, connection or transaction.
func NewPostgresUserStore(conn db.DBTX) *PostgresUserStore {
	return &PostgresUserStore{q: db.New(conn)}
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row, err := s.q.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return userFromRow(row), nil
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	row, err := s.q.InsertUser(ctx, db.InsertUserParams{
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return userFromRow(row), nil
}

func userFromRow(r db.User) User {
	return User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
	}
}

// MemoryUserStore keeps users in a map. Used by tests and local runs
// without a database.
type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]User
}

// NewMemoryUserStore returns an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (m *MemoryUserStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryUserStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[email]; ok {
		return User{}, ErrUserExists
	}
	m.nextID++
	u := User{ID: m.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[email] = u
	return u, nil
}
