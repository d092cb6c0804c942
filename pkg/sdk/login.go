package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxLoginBody caps how much of a login response is read.
const maxLoginBody = 1 << 20

// LoginRequest carries the credentials for one role-scoped login.
// Password is a mutable buffer so it can be wiped once the attempt is over.
type LoginRequest struct {
	Role     Role
	Email    string
	Password []byte
}

// ClearPassword zeroes and drops the password buffer.
func (r *LoginRequest) ClearPassword() {
	for i := range r.Password {
		r.Password[i] = 0
	}
	r.Password = nil
}

// LoginResult describes a successful login and where to navigate next.
type LoginResult struct {
	User    User
	Role    Role
	Landing string
}

type loginForm struct {
	Role     string `json:"role" validate:"required,portal_role"`
	Email    string `json:"email" validate:"required,email"`
	Password []byte `json:"password" validate:"required,password_len,has_upper,has_digit,has_special"`
}

type loginResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message"`
	Details struct {
		Suggestion string `json:"suggestion"`
	} `json:"details"`
}

// CredentialExchange performs the login round trip for one role at a time and
// commits the result to a SessionStore.
type CredentialExchange struct {
	baseURL    string
	httpClient *http.Client
	store      *SessionStore
}

// ExchangeOption customizes a CredentialExchange.
type ExchangeOption func(*CredentialExchange)

// WithExchangeHTTPClient overrides the HTTP client used for login requests.
// It should not carry an Authorizer: login requests are unauthenticated.
func WithExchangeHTTPClient(client *http.Client) ExchangeOption {
	return func(e *CredentialExchange) {
		e.httpClient = client
	}
}

// NewCredentialExchange builds an exchange against the API at baseURL.
func NewCredentialExchange(baseURL string, store *SessionStore, opts ...ExchangeOption) *CredentialExchange {
	e := &CredentialExchange{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient(),
		store:      store,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Login validates the request, posts it to the role's login endpoint and, on
// success, commits user and token to the session store. The request's password
// buffer is cleared before Login returns, whatever the outcome.
//
// The token is read from the Authorization response header when present and
// from the body "token" field otherwise.
func (e *CredentialExchange) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	defer req.ClearPassword()

	form := loginForm{
		Role:     string(req.Role),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}
	if err := validateStruct(form); err != nil {
		return nil, err
	}
	role := NormalizeRole(form.Role)

	body, err := encodeLoginBody(form.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	defer wipe(body)

	endpoint, err := url.JoinPath(e.baseURL, role.LoginPath())
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, &LoginError{Role: role, Message: DefaultLoginFailureMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginBody))
	if err != nil {
		return nil, &LoginError{Role: role, Status: resp.StatusCode, Message: DefaultLoginFailureMessage, Err: err}
	}

	var payload loginResponse
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoginError{
			Role:    role,
			Status:  resp.StatusCode,
			Message: failureMessage(payload, decodeErr),
		}
	}
	if decodeErr != nil && len(bytes.TrimSpace(raw)) > 0 {
		log.Printf("login: undecodable %s login response: %v", role, decodeErr)
	}

	// A header with a scheme but no credential counts as absent.
	token := stripBearer(resp.Header.Get("Authorization"))
	if token == "" {
		token = stripBearer(payload.Token)
	}
	if token == "" || payload.User == nil {
		return nil, &LoginError{
			Role:    role,
			Status:  resp.StatusCode,
			Message: DefaultLoginFailureMessage,
			Err:     ErrMalformedLoginResponse,
		}
	}

	user := *payload.User
	if user.Role == "" {
		user.Role = role
	}
	e.store.Login(ctx, user, token)
	log.Printf("login: authenticated user=%s role=%s", user.Email, user.Role)

	return &LoginResult{
		User:    user,
		Role:    role,
		Landing: role.LandingPath(),
	}, nil
}

// encodeLoginBody writes {"email":...,"password":...} straight from the
// password buffer. The caller wipes the result.
func encodeLoginBody(email string, password []byte) ([]byte, error) {
	quotedEmail, err := json.Marshal(email)
	if err != nil {
		return nil, err
	}
	body := make([]byte, 0, len(quotedEmail)+2*len(password)+32)
	body = append(body, `{"email":`...)
	body = append(body, quotedEmail...)
	body = append(body, `,"password":`...)
	body = appendJSONString(body, password)
	return append(body, '}'), nil
}

func failureMessage(payload loginResponse, decodeErr error) string {
	if decodeErr != nil {
		return DefaultLoginFailureMessage
	}
	if s := strings.TrimSpace(payload.Details.Suggestion); s != "" {
		return s
	}
	if s := strings.TrimSpace(payload.Message); s != "" {
		return s
	}
	return DefaultLoginFailureMessage
}

// defaultHTTPClient returns an HTTP client with a bounded timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}
