package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs a fresh command tree with an empty config directory.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, nil, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "tripctl")
	assert.Contains(t, out, "Trip Planning:")
	assert.Contains(t, out, "Presentation:")
	assert.Contains(t, out, "plan")
	assert.Contains(t, out, "normalize")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { version = "dev" })

	out, _, err := execute(t, nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, _, err = execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	SetVersion("")
	assert.Equal(t, "dev", version)
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := execute(t, nil, "invalid-command")
	assert.Error(t, err)
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"plan", "normalize", "styles", "attractions", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
			assert.NotEmpty(t, sub.GroupID)
		})
	}
}
