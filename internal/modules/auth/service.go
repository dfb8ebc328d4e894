package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/fox-studio/site/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = 7 * 24 * time.Hour
	adminSubject    = "admin"
	adminRole       = "owner"
)

var (
	errWrongPassword = errors.New("wrong password")
	errLoginDisabled = errors.New("admin login is not configured")
)

type Service struct {
	passwordHash []byte
	ttl          time.Duration
}

func NewService(passwordHash string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{passwordHash: []byte(strings.TrimSpace(passwordHash)), ttl: ttl}
}

// Login checks password against the configured bcrypt hash and issues a token.
func (s *Service) Login(password string) (string, time.Time, error) {
	if len(s.passwordHash) == 0 {
		return "", time.Time{}, errLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, errWrongPassword
	}
	expires := time.Now().Add(s.ttl)
	token, err := jwt.Sign(adminSubject, adminRole, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// HashPassword returns the bcrypt hash to put in admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
