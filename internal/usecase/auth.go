package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/email"
	"github.com/nbazarov/teamforge/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost for every stored password,
// including seeded fixtures.
const PasswordHashCost = 12

// TokenIssuer is the signing half of the token codec.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	tokens TokenIssuer
	email  email.Sender
	logger *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, tokens TokenIssuer, emailSender email.Sender, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		tokens: tokens,
		email:  emailSender,
		logger: logger.With("component", "auth_usecase"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register hashes the password, persists the user and returns it together
// with a fresh token. The plaintext password is never stored or logged.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), PasswordHashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", domain.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	u.sendWelcome(ctx, user)

	return user, signed, nil
}

// Login returns the user and a fresh token. An unknown email and a wrong
// password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, signed, nil
}

// CurrentUser resolves the user a verified token was issued for.
// domain.ErrUserNotFound means the account has gone away since.
func (u *AuthUsecase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// CreateToken issues a token for the given user without any store access.
func (u *AuthUsecase) CreateToken(userID string) (string, error) {
	return u.tokens.Issue(userID)
}

// sendWelcome is best-effort: a failed email never fails a registration.
func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	subject := "Welcome to TeamForge"
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account is ready. Sign in with %s to create your first project.</p>`,
		html.EscapeString(user.Name), html.EscapeString(user.Email),
	)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.Error("send welcome email", "error", err)
	}
}
