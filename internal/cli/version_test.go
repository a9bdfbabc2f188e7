package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, app *App, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app.SetOutput(&out, &out)
	app.SetArgs(append([]string{"version"}, args...))
	require.NoError(t, app.Execute())
	return out.String()
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name    string
		version []string
		want    []string
	}{
		{
			name:    "release build",
			version: []string{"1.2.3", "abc1234", "2026-01-15T10:30:00Z"},
			want:    []string{"planrate version 1.2.3", "commit: abc1234", "built: 2026-01-15T10:30:00Z"},
		},
		{
			name: "development build",
			want: []string{"planrate version dev", "commit: unknown", "built: unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := New()
			if tt.version != nil {
				app.SetVersion(tt.version[0], tt.version[1], tt.version[2])
			}
			lines := strings.Split(strings.TrimSpace(runVersion(t, app)), "\n")
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	app := New()
	app.SetVersion("0.4.0", "deadbee", "")

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(runVersion(t, app, "--json")), &info))
	assert.Equal(t, VersionInfo{Version: "0.4.0", Commit: "deadbee", Date: "unknown"}, info)
}

func TestSetVersion(t *testing.T) {
	app := New()
	assert.Equal(t, VersionInfo{}, app.versionInfo)

	app.SetVersion("1.2.3", "abc1234", "2026-01-15T10:30:00Z")
	assert.Equal(t, VersionInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-15T10:30:00Z"}, app.versionInfo)
}
