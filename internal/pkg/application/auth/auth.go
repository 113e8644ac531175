package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/client"
	"github.com/florax/florax-dashboard/pkg/types"
)

const MinPasswordLength int = 6

var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError maps a form field to the reason it was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return fmt.Sprintf("%s (%s)", ErrValidation.Error(), strings.Join(msgs, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TokenSink receives the token issued by a successful register or login.
type TokenSink interface {
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Service interface {
	Register(ctx context.Context, req types.RegisterRequest) (types.AuthResponse, error)
	Login(ctx context.Context, creds types.Credentials) (types.AuthResponse, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

type service struct {
	c      client.APIClient
	tokens TokenSink
}

func New(c client.APIClient, tokens TokenSink) Service {
	return &service{c: c, tokens: tokens}
}

// Validate applies the registration form rules and returns a
// *ValidationError listing every rejected field.
func Validate(req types.RegisterRequest) error {
	fields := map[string]string{}

	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}

	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(req.Email) {
		fields["email"] = "Invalid email format"
	}

	if strings.TrimSpace(req.Phone) == "" {
		fields["phone"] = "Phone is required"
	}

	if req.Password == "" {
		fields["password"] = "Password is required"
	} else if len(req.Password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}

	if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = "Passwords don't match"
	}

	if !req.Agree {
		fields["agree"] = "You must agree to terms & conditions"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

func (s *service) Register(ctx context.Context, req types.RegisterRequest) (types.AuthResponse, error) {
	if err := Validate(req); err != nil {
		return types.AuthResponse{}, err
	}

	return s.authenticate(ctx, "/auth/register", req)
}

func (s *service) Login(ctx context.Context, creds types.Credentials) (types.AuthResponse, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return types.AuthResponse{}, &ValidationError{Fields: map[string]string{"credentials": "Email and password are required"}}
	}

	return s.authenticate(ctx, "/auth/login", creds)
}

func (s *service) authenticate(ctx context.Context, path string, body any) (types.AuthResponse, error) {
	log := logging.GetLoggerFromContext(ctx)

	resp := types.AuthResponse{}
	err := s.c.Do(ctx, http.MethodPost, path, client.Params{Body: body}, &resp)
	if err != nil {
		log.Error().Err(err).Msgf("%s failed", path)
		return types.AuthResponse{}, dashboard.NewError(err)
	}

	if resp.Token == "" {
		err = fmt.Errorf("no token in response from %s", path)
		log.Error().Err(err).Msg("authentication failed")
		return types.AuthResponse{}, dashboard.NewError(err)
	}

	if err = s.tokens.Set(ctx, resp.Token); err != nil {
		return types.AuthResponse{}, fmt.Errorf("could not store session token: %w", err)
	}

	log.Debug().Str("email", resp.Email).Msg("signed in")

	return resp, nil
}

func (s *service) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", &ValidationError{Fields: map[string]string{"email": "Email is required"}}
	}

	return s.message(ctx, "/auth/forget-password", types.ForgotPasswordRequest{Email: email})
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	fields := map[string]string{}
	if strings.TrimSpace(token) == "" {
		fields["token"] = "Reset token is required"
	}
	if len(newPassword) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}

	return s.message(ctx, "/auth/reset-password", types.ResetPasswordRequest{Token: token, NewPassword: newPassword})
}

func (s *service) message(ctx context.Context, path string, body any) (string, error) {
	var raw []byte

	err := s.c.Do(ctx, http.MethodPost, path, client.Params{Body: body}, &raw)
	if err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msgf("%s failed", path)
		return "", dashboard.NewError(err)
	}

	return client.BodyText(raw), nil
}
