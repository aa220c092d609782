// Package store holds the development server's in-memory state: user
// accounts, conversations, and uploaded documents. Real deployments keep
// these in external services; the dev server only needs enough persistence
// to exercise the client for one process lifetime.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatterbox/chatterbox-go/internal/utils"
)

var (
	DuplicateUsernameErr = errors.New("Username already registered")
	DuplicateEmailErr    = errors.New("Email already registered")
	UserNotFoundErr      = errors.New("user not found")
	BadCredentialsErr    = errors.New("Incorrect username or password")
	InactiveUserErr      = errors.New("Inactive user account")
	WrongPasswordErr     = errors.New("Current password is incorrect")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
	IsActive     bool
}

type Users struct {
	mu         sync.RWMutex
	byUsername map[string]*User
	nowTime    func() time.Time
}

func NewUsers() *Users {
	return &Users{
		byUsername: make(map[string]*User),
		nowTime:    time.Now,
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (u *Users) Create(username, email, password string) (*User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.byUsername[username]; ok {
		return nil, DuplicateUsernameErr
	}
	for _, existing := range u.byUsername {
		if email != "" && existing.Email == email {
			return nil, DuplicateEmailErr
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    u.nowTime().UTC(),
		IsActive:     true,
	}
	u.byUsername[username] = user
	copied := *user
	return &copied, nil
}

func (u *Users) GetByUsername(username string) (*User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, ok := u.byUsername[username]
	if !ok {
		return nil, UserNotFoundErr
	}
	copied := *user
	return &copied, nil
}

// Authenticate verifies the credentials and stamps the last login time.
func (u *Users) Authenticate(username, password string) (*User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byUsername[username]
	if !ok || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, BadCredentialsErr
	}
	if !user.IsActive {
		return nil, InactiveUserErr
	}
	user.LastLogin = utils.Ptr(u.nowTime().UTC())
	copied := *user
	return &copied, nil
}

// SetEmail applies the only profile field the backend lets users change.
func (u *Users) SetEmail(username, email string) (*User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byUsername[username]
	if !ok {
		return nil, UserNotFoundErr
	}
	user.Email = email
	copied := *user
	return &copied, nil
}

func (u *Users) ChangePassword(username, currentPassword, newPassword string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byUsername[username]
	if !ok {
		return UserNotFoundErr
	}
	if !CheckPasswordHash(currentPassword, user.PasswordHash) {
		return WrongPasswordErr
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}
