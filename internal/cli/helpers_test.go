package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConfig writes a configuration pointing at the testdata manifest and
// rig with a history database in a temp dir. extra is appended verbatim.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()

	manifestPath, err := filepath.Abs(filepath.Join("testdata", "actions.json"))
	require.NoError(t, err)
	rigPath, err := filepath.Abs(filepath.Join("testdata", "rig.yaml"))
	require.NoError(t, err)

	content := fmt.Sprintf("manifest: %s\nruntime_fixture: %s\ndatabase: history.db\nlog_level: error\n%s",
		manifestPath, rigPath, extra)
	path := filepath.Join(dir, "vrorigins.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
