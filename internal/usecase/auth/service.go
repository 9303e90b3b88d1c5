package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	domuser "example.com/category-admin/internal/domain/user"
)

type PasswordComparer interface {
	Compare(hash string, password string) error
}

// Claims is what a verified token says about its bearer.
type Claims struct {
	UserID   int64
	RoleCode domuser.RoleCode
	Email    string
	Name     string
}

type TokenService interface {
	GenerateToken(u *domuser.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	userRepo domuser.Repository
	checker  PasswordComparer
	tokens   TokenService
}

func NewService(
	userRepo domuser.Repository,
	checker PasswordComparer,
	tokens TokenService,
) *Service {
	return &Service{
		userRepo: userRepo,
		checker:  checker,
		tokens:   tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *domuser.User
}

// Login issues a token for an account allowed to manage categories. Unknown
// accounts, wrong passwords and roles without access all read as
// ErrUnauthorized; a failing user store is returned as is.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domuser.ErrUserNotFound):
		return nil, domuser.ErrUnauthorized
	case err != nil:
		return nil, errors.Wrap(err, "look up admin account")
	}

	if err := s.checker.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}
	if !u.RoleCode.CanManageCategories() {
		return nil, domuser.ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User:  u,
	}, nil
}

// Authenticate verifies a bearer token. Role checks are left to the caller so
// that a valid token with the wrong role can be told apart from a bad one.
func (s *Service) Authenticate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domuser.ErrUnauthorized
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil || claims == nil {
		return nil, domuser.ErrUnauthorized
	}
	return claims, nil
}
