package account

import (
	"context"
	"strings"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils"
	"Food-Rescue-Ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
)

type (
	AccountService interface {
		Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
		// GetEmail resolves a user id to its login email, for notifications.
		GetEmail(userID string) (string, bool)
	}

	accountService struct {
		accounts   []utils.Account
		jwtService jwt.JWTService
	}
)

func NewAccountService(accounts []utils.Account, jwtService jwt.JWTService) AccountService {
	valid := make([]utils.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.ID == "" || a.Email == "" || a.PasswordHash == "" {
			log.Warnw("skipping incomplete account", "id", a.ID, "email", a.Email)
			continue
		}
		valid = append(valid, a)
	}
	return &accountService{
		accounts:   valid,
		jwtService: jwtService,
	}
}

func (s *accountService) find(email string) (utils.Account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return utils.Account{}, false
}

func (s *accountService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	account, ok := s.find(strings.TrimSpace(req.Email))
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user := domain.CurrentUser{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		Role:        account.Role,
	}
	return &domain.LoginResponse{
		Token: s.jwtService.GenerateTokenUser(user),
		User:  user,
	}, nil
}

func (s *accountService) GetEmail(userID string) (string, bool) {
	for _, a := range s.accounts {
		if a.ID == userID {
			return a.Email, true
		}
	}
	return "", false
}
