// Package clitest runs edugridctl command trees against a recording
// httptest server with a logged-in session.
package clitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/edugrid/portal/cmd/edugridctl/internal/config"
	appconfig "github.com/edugrid/portal/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

// Request is what the server saw for one call. Body holds the decoded JSON
// body, or nil for empty and multipart bodies.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Form   map[string]string
	File   string
}

// OK answers every call with an empty successful envelope.
func OK(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"success":true}`))
}

// Reply answers every call with body.
func Reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

// Run executes root with args as user and returns the calls the API received.
func Run(t *testing.T, root *cobra.Command, user sdk.User, handler http.HandlerFunc, args ...string) ([]Request, error) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []Request
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := record(t, r)
		mu.Lock()
		seen = append(seen, rec)
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	rt := config.NewRuntime(appconfig.Config{APIBaseURL: server.URL, SessionDSN: "mem:"})
	t.Cleanup(func() { _ = rt.Sessions.Close() })
	ctx := config.WithRuntime(context.Background(), rt)
	sc, err := config.Session(ctx)
	require.NoError(t, err)
	sc.Store.Login(ctx, user, "tok")

	// Subcommands keep the context of an earlier execution unless reset.
	setContext(root, ctx)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	mu.Lock()
	defer mu.Unlock()
	return seen, err
}

func record(t *testing.T, r *http.Request) Request {
	rec := Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart body: %v", err)
			return rec
		}
		rec.Form = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			rec.Form[k] = v[0]
		}
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			f, err := files[0].Open()
			if err == nil {
				var buf bytes.Buffer
				_, _ = io.Copy(&buf, f)
				_ = f.Close()
				rec.File = files[0].Filename + ":" + buf.String()
			}
		}
		return rec
	}
	_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	return rec
}

func setContext(c *cobra.Command, ctx context.Context) {
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		setContext(sub, ctx)
	}
}
