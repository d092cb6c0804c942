package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugrid/portal/cmd/edugridctl/internal/client"
	"github.com/edugrid/portal/pkg/sdk"
)

func TestRunClosesSessionStore(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "command fails", args: []string{"notice", "list"}, wantErr: sdk.ErrNotAuthenticated},
		{name: "command succeeds", args: []string{"auth", "logout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--session-dsn", "dir:"+t.TempDir(), "--api", "http://127.0.0.1:1", "--non-interactive")
			err := run(context.Background(), args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, invocation, "root command set up the invocation")
			assert.Equal(t, "file", invocation.Sessions.BackendKind())
			_, err = invocation.Sessions.Session(context.Background())
			assert.ErrorIs(t, err, client.ErrClosed)
		})
	}
}

func TestRootRegistersCommands(t *testing.T) {
	for _, path := range [][]string{
		{"semester", "create"},
		{"subject", "list"},
		{"schedule", "add"},
		{"exam", "update"},
		{"assignment", "submit"},
		{"attendance", "mine"},
		{"notice", "update"},
		{"notice", "staff", "delete"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name(), path)
	}
}
