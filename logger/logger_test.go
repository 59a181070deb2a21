package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_TextToWriter(t *testing.T) {
	var buf bytes.Buffer
	cleanup, err := Setup(Config{Level: "info", Stderr: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	L().Debug("hidden")
	L().Info("menu.changed", "to", "blink")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "msg=menu.changed")
	require.Contains(t, out, "to=blink")
}

func TestSetup_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ledmenu.log")
	cleanup, err := Setup(Config{Format: "json", File: path, Debug: true})
	require.NoError(t, err)

	L().Debug("pwm.write", "value", 150)
	require.NoError(t, cleanup())

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if rec["msg"] == "pwm.write" {
			found = true
			require.Equal(t, float64(150), rec["value"])
			require.Contains(t, rec, "source")
		}
	}
	require.True(t, found)
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(Config{Level: "loud", Stderr: &bytes.Buffer{}})
	require.ErrorContains(t, err, "loud")
}

func TestCleanup_ResetsToDiscard(t *testing.T) {
	var buf bytes.Buffer
	cleanup, err := Setup(Config{Stderr: &buf})
	require.NoError(t, err)
	require.NoError(t, cleanup())

	L().Error("after cleanup")
	require.NotContains(t, buf.String(), "after cleanup")
}
