package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell(t *testing.T) {
	input := strings.Join([]string{
		"",
		"add alice alice@example.com",
		"grant alice role dev",
		"props alice",
		"grant alice",
		"passwd nobody",
		"shell",
		"list",
		"exit",
		"list",
	}, "\n") + "\n"
	tc := newTestCLI(t, input)
	tc.passwords = []string{pwAlice}

	require.NoError(t, tc.Shell(context.Background()))
	out := tc.out.String()

	assert.Contains(t, out, "created user alice")
	assert.Contains(t, out, "role=dev")
	assert.Contains(t, out, "usage error: grant <login> <name> <value>")
	assert.Contains(t, out, "error: not found")
	assert.Contains(t, out, "already in shell")
	assert.Contains(t, out, "\talice\talice@example.com")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))
	assert.Equal(t, 1, strings.Count(out, "\talice\talice@example.com"), "commands after exit are not run")
}

func TestShell_EOF(t *testing.T) {
	tc := newTestCLI(t, "list")
	require.NoError(t, tc.Shell(context.Background()))
	assert.Equal(t, "userctl> userctl> \n", tc.out.String())
}

func TestShell_PromptReadsFromSameInput(t *testing.T) {
	tc := newTestCLI(t, "remove alice\ny\nlist\n")
	tc.addUser(t, "alice", pwAlice)
	tc.out.Reset()

	require.NoError(t, tc.Shell(context.Background()))
	out := tc.out.String()
	assert.Contains(t, out, "Remove user \"alice\"")
	assert.Contains(t, out, "removed")
	assert.NotContains(t, out, "alice@example.com")
}
