package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoopback(t *testing.T, state string) *loopback {
	t.Helper()
	l, err := listenLoopback(state, 18085, 18185)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.close() })
	return l
}

func callback(t *testing.T, l *loopback, query string) string {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/callback?%s", l.port(), query)
	resp, err := http.Get(url) //nolint:gosec,noctx // loopback test server
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestLoopback_Code(t *testing.T) {
	l := startLoopback(t, "state-1")

	body := callback(t, l, "state=state-1&code=abc")
	code, err := l.wait(context.Background(), time.Second)

	require.NoError(t, err)
	assert.Equal(t, "abc", code)
	assert.Contains(t, body, "Signed in")
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/callback", l.port()), l.redirectURL())
}

func TestLoopback_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{name: "state mismatch", query: "state=other&code=abc", wantErr: "state mismatch"},
		{name: "missing code", query: "state=state-1", wantErr: "no authorization code"},
		{name: "provider error", query: "error=access_denied&error_description=denied", wantErr: "access_denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := startLoopback(t, "state-1")

			body := callback(t, l, tt.query)
			_, err := l.wait(context.Background(), time.Second)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, body, "Authorization failed")
		})
	}
}

func TestLoopback_FirstResultWins(t *testing.T) {
	l := startLoopback(t, "state-1")

	callback(t, l, "state=state-1&code=first")
	callback(t, l, "state=state-1&code=second")
	code, err := l.wait(context.Background(), time.Second)

	require.NoError(t, err)
	assert.Equal(t, "first", code)
}

func TestLoopback_SkipsBusyPort(t *testing.T) {
	first := startLoopback(t, "a")
	second, err := listenLoopback("b", first.port(), first.port()+50)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.close() })

	assert.Greater(t, second.port(), first.port())
}

func TestLoopback_Timeout(t *testing.T) {
	l := startLoopback(t, "state-1")

	_, err := l.wait(context.Background(), 10*time.Millisecond)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallbackPage_EscapesMessage(t *testing.T) {
	l := startLoopback(t, "state-1")

	body := callback(t, l, "error=x&error_description=%3Cscript%3E")

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestWriteCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "creds.json")

	err := writeCredentials(path, authorizedUser{
		Type: "authorized_user", ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh",
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "authorized_user", got["type"])
	assert.Equal(t, "refresh", got["refresh_token"])
}

func TestAuthCmd_HasGDrive(t *testing.T) {
	names := make([]string, 0)
	for _, c := range authCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "gdrive")
}
