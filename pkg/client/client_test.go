package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	test "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"
	"github.com/matryer/is"
	"golang.org/x/oauth2"
)

type tokenSlot struct {
	token   string
	cleared int
}

func (s *tokenSlot) Token(context.Context) (*oauth2.Token, bool) {
	if s.token == "" {
		return nil, false
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, true
}

func (s *tokenSlot) Clear(context.Context) error {
	s.token = ""
	s.cleared++
	return nil
}

func TestBearerHeaderIsAttachedWhenTokenPresent(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/dashboard/summary"),
			expects.RequestMethod(http.MethodGet),
			expects.RequestHeaderContains("Authorization", "Bearer testtoken"),
			expects.RequestHeaderContains("Accept", "application/json"),
		),
		test.Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"value":42}`)),
		),
	)
	defer s.Close()

	c := New(s.URL(), WithTokenSource(&tokenSlot{token: "testtoken"}))

	var out struct {
		Value int `json:"value"`
	}
	err := c.Do(context.Background(), http.MethodGet, "/dashboard/summary", Params{}, &out)
	is.NoErr(err)
	is.Equal(42, out.Value)
}

func TestRequestIDIsSent(t *testing.T) {
	is := is.New(t)

	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), http.MethodGet, "/dashboard/me", Params{}, nil)
	is.NoErr(err)
	is.True(requestID != "")
}

func TestNoBearerHeaderWithoutToken(t *testing.T) {
	is := is.New(t)

	authHeader := "unset"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(&tokenSlot{}))

	err := c.Do(context.Background(), http.MethodPut, "/dashboard/alerts/1/resolve", Params{}, nil)
	is.NoErr(err)
	is.Equal("", authHeader)
}

func TestBodyIsSentAsJSON(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/auth/login"),
			expects.RequestMethod(http.MethodPost),
			expects.RequestHeaderContains("Content-Type", "application/json"),
			expects.RequestBodyContaining(`"email":"a@b.se"`),
		),
		test.Returns(
			response.Code(http.StatusOK),
			response.Body([]byte(`[]`)),
		),
	)
	defer s.Close()

	c := New(s.URL() + "/")

	err := c.Do(context.Background(), http.MethodPost, "/auth/login", Params{
		Body: map[string]string{"email": "a@b.se"},
	}, nil)
	is.NoErr(err)
}

func TestQueryIsEncoded(t *testing.T) {
	is := is.New(t)

	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	err := New(srv.URL).Do(context.Background(), http.MethodGet, "/dashboard/alerts/recent", Params{
		Query: url.Values{"limit": []string{"10"}},
	}, nil)
	is.NoErr(err)
	is.Equal("limit=10", rawQuery)
}

func TestUnauthorizedClearsTokenAndRedirectsOnce(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/dashboard/zones"),
			expects.RequestHeaderContains("Authorization", "Bearer stale"),
		),
		test.Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusUnauthorized),
			response.Body([]byte(`{"message":"token expired"}`)),
		),
	)
	defer s.Close()

	slot := &tokenSlot{token: "stale"}
	redirects := 0

	c := New(s.URL(), WithTokenSource(slot), WithUnauthorizedHandler(func(context.Context) {
		redirects++
	}))

	err := c.Do(context.Background(), http.MethodGet, "/dashboard/zones", Params{}, nil)
	is.True(err != nil)
	is.True(errors.Is(err, ErrUnauthorized))

	var httpErr *HTTPError
	is.True(errors.As(err, &httpErr))
	is.Equal(http.StatusUnauthorized, httpErr.StatusCode)
	is.Equal(`{"message":"token expired"}`, string(httpErr.Body))

	_, ok := slot.Token(context.Background())
	is.True(!ok)
	is.Equal(1, slot.cleared)
	is.Equal(1, redirects)
}

func TestNonSuccessStatusReturnsHTTPError(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/dashboard/zones/9"),
		),
		test.Returns(
			response.Code(http.StatusNotFound),
			response.Body([]byte(`zone not found`)),
		),
	)
	defer s.Close()

	redirects := 0
	c := New(s.URL(), WithUnauthorizedHandler(func(context.Context) { redirects++ }))

	err := c.Do(context.Background(), http.MethodGet, "/dashboard/zones/9", Params{}, nil)

	var httpErr *HTTPError
	is.True(errors.As(err, &httpErr))
	is.Equal(http.StatusNotFound, httpErr.StatusCode)
	is.True(!errors.Is(err, ErrUnauthorized))
	is.Equal(0, redirects)
}

func TestNetworkFailure(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(test.Expects(is), test.Returns(response.Code(http.StatusOK)))
	baseURL := s.URL()
	s.Close()

	c := New(baseURL)

	err := c.Do(context.Background(), http.MethodGet, "/dashboard/me", Params{}, nil)
	is.True(errors.Is(err, ErrNetwork))
}

func TestRawBodyIsReturnedForByteSliceOut(t *testing.T) {
	is := is.New(t)

	s := test.NewMockServiceThat(
		test.Expects(is,
			expects.RequestPath("/auth/reset-password"),
			expects.RequestMethod(http.MethodPost),
		),
		test.Returns(
			response.ContentType("text/plain"),
			response.Code(http.StatusOK),
			response.Body([]byte("Password has been reset successfully.")),
		),
	)
	defer s.Close()

	var raw []byte
	err := New(s.URL()).Do(context.Background(), http.MethodPost, "/auth/reset-password", Params{Body: map[string]string{"token": "t"}}, &raw)
	is.NoErr(err)
	is.Equal("Password has been reset successfully.", string(raw))
}

func TestTimeoutSurvivesLaterHTTPClientOption(t *testing.T) {
	is := is.New(t)

	custom := &http.Client{}
	c := New("http://localhost", WithTimeout(3*time.Second), WithHTTPClient(custom)).(*apiClient)

	is.Equal(3*time.Second, c.httpClient.Timeout)
	is.Equal(time.Duration(0), custom.Timeout) // caller's client is left alone
}

func TestNilHTTPClientKeepsDefault(t *testing.T) {
	is := is.New(t)

	c := New("http://localhost", WithHTTPClient(nil), WithTimeout(time.Second)).(*apiClient)

	is.True(c.httpClient != nil)
	is.Equal(time.Second, c.httpClient.Timeout)
}

func TestSlowServerHitsTimeout(t *testing.T) {
	is := is.New(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := New(srv.URL, WithTimeout(50*time.Millisecond)).Do(context.Background(), http.MethodGet, "/dashboard/me", Params{}, nil)
	is.True(errors.Is(err, ErrNetwork))
}
