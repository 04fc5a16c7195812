package caller

import (
	"errors"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		command  string
		expected Cmdline
		wantErr  bool
	}{
		{command: "bet", expected: Cmdline{"bet"}},
		{command: "sh testdata/app1.sh", expected: Cmdline{"sh", "testdata/app1.sh"}},
		{command: `python -m "my tool"`, expected: Cmdline{"python", "-m", "my tool"}},
		{command: "   ", wantErr: true},
		{command: `"open`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, err := ParseCommand(tt.command)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCmdline_Accessors(t *testing.T) {
	c := Cmdline{"bet", "-f", "0.5", "my file.nii"}
	assert.Equal(t, "bet", c.Program())
	assert.Equal(t, []string{"-f", "0.5", "my file.nii"}, c.Args())

	words, err := shellquote.Split(c.String())
	require.NoError(t, err)
	assert.Equal(t, []string(c), words)

	var empty Cmdline
	assert.Equal(t, "", empty.Program())
	assert.Empty(t, empty.Args())
}

func TestError_Messages(t *testing.T) {
	err := &Error{Kind: ErrValidation, Param: "frac", Key: "f", Value: "x", Err: errors.New("bad")}
	assert.Equal(t, `caller: invalid parameter value "frac" (as "f") value x: bad`, err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrMissingRequired))

	exitErr := &ExitError{Command: Cmdline{"bet"}, ExitCode: 2, Stderr: []byte("boom\n")}
	assert.True(t, errors.Is(exitErr, ErrExecution))
	assert.Equal(t, "caller: execution failed: bet exited with status 2: boom", exitErr.Error())
	assert.Equal(t, ErrExecution, KindOf(exitErr))
	assert.Nil(t, KindOf(errors.New("other")))
}
