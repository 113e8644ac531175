package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/session"
	"github.com/florax/florax-dashboard/pkg/client"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/matryer/is"
)

func validRegistration() types.RegisterRequest {
	return types.RegisterRequest{
		Name:            "Ada Gardener",
		Email:           "ada@example.com",
		Phone:           "0701234567",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "USER",
		Agree:           true,
	}
}

func testSetup(t *testing.T, handler http.HandlerFunc) (*session.Session, Service) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := session.New(context.Background(), session.NewMemoryStore(""))
	if err != nil {
		t.Fatal(err)
	}

	return s, New(client.New(srv.URL, client.WithTokenSource(s)), s)
}

func TestValidateRejectsEveryInvalidField(t *testing.T) {
	is := is.New(t)

	err := Validate(types.RegisterRequest{
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "abd",
	})
	is.True(errors.Is(err, ErrValidation))

	var verr *ValidationError
	is.True(errors.As(err, &verr))
	is.Equal("Name is required", verr.Fields["name"])
	is.Equal("Invalid email format", verr.Fields["email"])
	is.Equal("Phone is required", verr.Fields["phone"])
	is.Equal("Password must be at least 6 characters", verr.Fields["password"])
	is.Equal("Passwords don't match", verr.Fields["confirmPassword"])
	is.Equal("You must agree to terms & conditions", verr.Fields["agree"])
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	is := is.New(t)
	is.NoErr(Validate(validRegistration()))
}

func TestRegisterDoesNotCallBackendWhenInvalid(t *testing.T) {
	is := is.New(t)

	called := false
	_, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := validRegistration()
	req.Agree = false

	_, err := svc.Register(context.Background(), req)
	is.True(errors.Is(err, ErrValidation))
	is.True(!called)
}

func TestRegisterStoresToken(t *testing.T) {
	is := is.New(t)

	var received types.RegisterRequest
	s, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal("/auth/register", r.URL.Path)
		is.Equal(http.MethodPost, r.Method)
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{"token":"abc.def","name":"Ada Gardener","email":"ada@example.com","role":"USER"}`))
	})

	resp, err := svc.Register(context.Background(), validRegistration())
	is.NoErr(err)
	is.Equal("Ada Gardener", resp.Name)
	is.Equal("ada@example.com", received.Email)

	token, ok := s.Token(context.Background())
	is.True(ok)
	is.Equal("abc.def", token.AccessToken)
}

func TestLoginThenCallsCarryBearer(t *testing.T) {
	is := is.New(t)

	var authHeader string
	_, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"tok123"}`))
		case "/auth/forget-password":
			authHeader = r.Header.Get("Authorization")
			w.Write([]byte("Password reset token sent to email (check console for demo)."))
		}
	})

	_, err := svc.Login(context.Background(), types.Credentials{Email: "ada@example.com", Password: "secret1"})
	is.NoErr(err)

	msg, err := svc.ForgotPassword(context.Background(), "ada@example.com")
	is.NoErr(err)
	is.Equal("Bearer tok123", authHeader)
	is.Equal("Password reset token sent to email (check console for demo).", msg)
}

func TestLoginFailureUsesServerMessage(t *testing.T) {
	is := is.New(t)

	s, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	_, err := svc.Login(context.Background(), types.Credentials{Email: "ada@example.com", Password: "wrong1"})

	var svcErr *dashboard.Error
	is.True(errors.As(err, &svcErr))
	is.Equal("Invalid email or password", svcErr.Message)
	is.True(!s.Authenticated())
}

func TestLogoutClearsSession(t *testing.T) {
	is := is.New(t)

	s, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok123"}`))
	})

	_, err := svc.Login(context.Background(), types.Credentials{Email: "ada@example.com", Password: "secret1"})
	is.NoErr(err)
	is.True(s.Authenticated())

	is.NoErr(svc.Logout(context.Background()))
	is.True(!s.Authenticated())
}

func TestResetPasswordSendsTokenAndNewPassword(t *testing.T) {
	is := is.New(t)

	var received types.ResetPasswordRequest
	_, svc := testSetup(t, func(w http.ResponseWriter, r *http.Request) {
		is.Equal("/auth/reset-password", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`"Password has been reset successfully."`))
	})

	msg, err := svc.ResetPassword(context.Background(), "reset-token", "newsecret")
	is.NoErr(err)
	is.Equal("Password has been reset successfully.", msg)
	is.Equal("reset-token", received.Token)
	is.Equal("newsecret", received.NewPassword)

	_, err = svc.ResetPassword(context.Background(), "", "x")
	is.True(errors.Is(err, ErrValidation))
}
