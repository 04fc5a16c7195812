package caller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appcaller/internal/testutils"
	"appcaller/pkg/callertypes"
)

var app1Prefix = []string{"sh", "testdata/app1.sh"}

func app1Definitions() *Definitions {
	return MustDefinitions(
		[]*Parameter{p1, p2},
		[]*Parameter{o1},
	)
}

func TestApp_App1Script(t *testing.T) {
	tests := []struct {
		name        string
		positionals []any
		named       map[string]any
		expected    string
	}{
		{
			name:        "positionals only",
			positionals: []any{"arg1", "arg2"},
			expected:    "arg1 arg2 None\n",
		},
		{
			name:        "option by name",
			positionals: []any{"arg1", "arg2"},
			named:       map[string]any{"option1": "opt1"},
			expected:    "arg1 arg2 opt1\n",
		},
		{
			name:        "option by dash alias",
			positionals: []any{"arg1", "arg2"},
			named:       map[string]any{"-1": "opt1"},
			expected:    "arg1 arg2 opt1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(app1Prefix, app1Definitions())
			require.NoError(t, err)
			require.NoError(t, app.SetParameters(tt.positionals, tt.named))

			result, err := app.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, result.ExitCode)
			assert.Equal(t, tt.expected, string(result.Stdout))
			assert.NotEmpty(t, result.ID)
			assert.True(t, result.Success())
		})
	}
}

func TestApp_MissingRequiredNeverRuns(t *testing.T) {
	defs := MustDefinitions([]*Parameter{p1, p2, NewPositional("param3", Required())}, []*Parameter{o1})
	stub := testutils.NewStubExecutor("")

	app, err := NewApp(app1Prefix, defs, WithExecutor(stub), WithValues([]any{"arg1"}, nil))
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrMissingRequired))
	assert.True(t, errors.Is(err, ErrMissingPositional))
	assert.Empty(t, stub.Calls())
}

func TestApp_UnknownKey(t *testing.T) {
	app, err := NewApp(app1Prefix, app1Definitions(), WithExecutor(testutils.NewStubExecutor("")))
	require.NoError(t, err)

	err = app.SetParameters([]any{"arg1", "arg2"}, map[string]any{"-2": "opt2"})
	assert.True(t, errors.Is(err, ErrUnknownParameter))

	_, err = NewApp(app1Prefix, app1Definitions(), WithValues(nil, map[string]any{"-2": "x"}))
	assert.True(t, errors.Is(err, ErrUnknownParameter))
}

func TestApp_SetParametersIsAtomic(t *testing.T) {
	app, err := NewApp(app1Prefix, app1Definitions(),
		WithExecutor(testutils.NewStubExecutor("")),
		WithValues([]any{"a"}, map[string]any{"o1": "x"}),
	)
	require.NoError(t, err)

	err = app.SetParameters([]any{"b", "c", "d"}, nil)
	require.True(t, errors.Is(err, ErrTooManyPositionals))

	assert.Equal(t, []any{"a"}, app.Positionals())
	assert.Equal(t, map[string]any{"option1": "x"}, app.Options())
}

func TestApp_SetParameter(t *testing.T) {
	app, err := NewApp(app1Prefix, app1Definitions(),
		WithExecutor(testutils.NewStubExecutor("")),
		WithValues([]any{"a"}, nil),
	)
	require.NoError(t, err)

	require.NoError(t, app.SetParameter("o1", "x"))
	require.NoError(t, app.SetParameter("option1", "y"))
	require.NoError(t, app.SetParameter("prm2", "b"))
	assert.Equal(t, []any{"a", "b"}, app.Positionals())
	assert.Equal(t, map[string]any{"option1": "y"}, app.Options())

	assert.True(t, errors.Is(app.SetParameter("nope", 1), ErrUnknownParameter))
	assert.Equal(t, map[string]any{"option1": "y"}, app.Options())

	cmdline, err := app.Cmdline()
	require.NoError(t, err)
	assert.Equal(t, Cmdline{"sh", "testdata/app1.sh", "--option1=y", "a", "b"}, cmdline)
}

func TestApp_RunUsesExecutor(t *testing.T) {
	stub := testutils.NewStubExecutor("done\n")
	app, err := NewApp([]string{"cmd"}, app1Definitions(),
		WithExecutor(stub),
		WithValues([]any{"a", "b"}, map[string]any{"o1": "x"}),
	)
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd", "--option1=x", "a", "b"}, stub.LastCall())
	assert.Equal(t, []string{"cmd", "--option1=x", "a", "b"}, result.Command)
	assert.Equal(t, "done\n", string(result.Stdout))
	assert.Positive(t, result.Duration)
}

func TestApp_NonZeroExit(t *testing.T) {
	stub := &testutils.StubExecutor{ExitCode: 2, Stderr: "bad input\n"}

	app, err := NewApp([]string{"cmd"}, app1Definitions(), WithExecutor(stub), WithValues([]any{"a"}, nil))
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecution))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.ExitCode)
	assert.False(t, result.Success())

	tolerant, err := NewApp([]string{"cmd"}, app1Definitions(), WithExecutor(stub), WithAllowFailure(), WithValues([]any{"a"}, nil))
	require.NoError(t, err)
	result, err = tolerant.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExitCode)
	assert.Equal(t, "bad input\n", string(result.Stderr))
}

func TestApp_ExecutorFailure(t *testing.T) {
	cause := errors.New("no such program")
	stub := &testutils.StubExecutor{Err: cause}

	app, err := NewApp([]string{"missing"}, app1Definitions(), WithExecutor(stub), WithValues([]any{"a"}, nil))
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrExecution))
	assert.True(t, errors.Is(err, cause))
}

func TestApp_RealExecutorStartFailure(t *testing.T) {
	app, err := NewApp([]string{"appcaller-definitely-not-installed"}, app1Definitions(), WithValues([]any{"a"}, nil))
	require.NoError(t, err)

	_, err = app.Run(context.Background())
	assert.True(t, errors.Is(err, ErrExecution))
}

func TestApp_CustomPackager(t *testing.T) {
	packager := func(call *Call, inv *callertypes.Invocation) (*callertypes.Result, error) {
		return &callertypes.Result{
			ID:       call.ID,
			ExitCode: inv.ExitCode,
			Fields:   map[string]any{"first": call.Positionals[0]},
		}, nil
	}
	app, err := NewApp([]string{"cmd"}, app1Definitions(),
		WithExecutor(testutils.NewStubExecutor("")),
		WithPackager(packager),
		WithValues([]any{"a"}, nil),
	)
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	value, ok := result.Field("first")
	require.True(t, ok)
	assert.Equal(t, "a", value)
}

func TestApp_ConstructionErrors(t *testing.T) {
	_, err := NewApp(nil, app1Definitions())
	assert.Error(t, err)

	_, err = NewApp([]string{"cmd"}, nil)
	assert.Error(t, err)

	var unset App
	_, err = unset.Cmdline()
	assert.True(t, errors.Is(err, ErrNotResolved))
	_, err = unset.Run(context.Background())
	assert.True(t, errors.Is(err, ErrNotResolved))
}
