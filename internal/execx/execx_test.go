package execx

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test uses unix shell tools")
	}
}

func TestRunSuccess(t *testing.T) {
	requireUnix(t)
	runner := NewRunner(5 * time.Second)

	result := runner.Run(context.Background(), "echo", "hello")

	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Output)
}

func TestRunFailureCapturesExitCode(t *testing.T) {
	requireUnix(t)
	runner := NewRunner(5 * time.Second)

	result := runner.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Output, "oops")
}

func TestRunTimeout(t *testing.T) {
	requireUnix(t)
	runner := NewRunner(100 * time.Millisecond)

	result := runner.Run(context.Background(), "sleep", "5")

	assert.Equal(t, StatusTimeout, result.Status)
	assert.Equal(t, -1, result.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	runner := NewRunner(time.Second)

	result := runner.Run(context.Background(), "definitely-not-a-real-binary-xyz")

	assert.Equal(t, StatusFailed, result.Status)
	require.NotEmpty(t, result.Output)
}
