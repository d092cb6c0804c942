package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// maxResponseBody bounds JSON and PDF reads from the backend.
const maxResponseBody = 32 << 20

// Client provides typed access to the portal REST API. Authentication is the
// job of the underlying http.Client: pass one with an Authorizer installed.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// NewClient creates a client for the API at baseURL (for example http://localhost:3000).
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// envelope is the response shape shared by the portal endpoints.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do issues a JSON request to /api/<apiPath> and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, in any) ([]byte, http.Header, error) {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.send(ctx, method, apiPath, query, body, contentType)
}

// send issues a request with a prepared body.
func (c *Client) send(ctx context.Context, method, apiPath string, query url.Values, body io.Reader, contentType string) ([]byte, http.Header, error) {
	endpoint, err := url.JoinPath(c.baseURL, "api", apiPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, "/api/"+apiPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: "/api/" + apiPath, Status: resp.StatusCode}
		var env envelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return nil, nil, apiErr
	}
	return raw, resp.Header, nil
}

// doJSON issues a request and decodes the envelope's data field into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, apiPath string, query url.Values, in, out any) error {
	return c.doJSONKey(ctx, method, apiPath, query, in, "data", out)
}

// doJSONKey is doJSON for endpoints that put their payload under key instead
// of data. A bare JSON array response is decoded into out as is.
func (c *Client) doJSONKey(ctx context.Context, method, apiPath string, query url.Values, in any, key string, out any) error {
	raw, _, err := c.do(ctx, method, apiPath, query, in)
	if err != nil {
		return err
	}
	return decodePayload(method, apiPath, raw, key, out)
}

func decodePayload(method, apiPath string, raw []byte, key string, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s data: %w", apiPath, err)
		}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("decode %s response: %w", apiPath, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", apiPath, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return &APIError{Method: method, Path: "/api/" + apiPath, Status: http.StatusOK, Message: msg}
	}

	payload, ok := fields[key]
	if !ok {
		payload = fields["data"]
	}
	if out == nil || len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s data: %w", apiPath, err)
	}
	return nil
}

// Ref points at another record. The backend sends it either as a bare id or
// populated with the record itself; Name carries the populated display name.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		id, err := decodeID(data)
		if err != nil {
			return fmt.Errorf("decode reference: %w", err)
		}
		r.ID = id
		return nil
	}

	var raw struct {
		ID           json.RawMessage `json:"_id"`
		Name         string          `json:"name"`
		SubjectName  string          `json:"subject_name"`
		SemesterText string          `json:"semester_text"`
		SemesterNum  json.RawMessage `json:"semester_num"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decode reference _id: %w", err)
	}
	r.ID = id
	for _, name := range []string{raw.Name, raw.SubjectName, raw.SemesterText} {
		if name != "" {
			r.Name = name
			return nil
		}
	}
	if num, err := decodeID(raw.SemesterNum); err == nil {
		r.Name = num
	}
	return nil
}

// String returns the display name, or the id when the reference was not populated.
func (r Ref) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
