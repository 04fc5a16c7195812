package caller

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	p1 = NewPositional("param1", WithAliases("p1", "prm1"), Required())
	p2 = NewPositional("param2", WithAliases("p2", "prm2"))
	o1 = NewOption("option1", WithAliases("o1", "-1"))
	o2 = NewOption("option2", WithAliases("o2", "-2"))
	f1 = NewFlag("option3", WithAliases("o3", "-3"))
)

func TestPositionals_Slots(t *testing.T) {
	ps, err := NewPositionals([]*Parameter{p1, p2}, false)
	require.NoError(t, err)
	assert.False(t, ps.Globbing())
	assert.Equal(t, []*Parameter{p1, p2}, slices.Collect(ps.Slots()))

	globbing, err := NewPositionals([]*Parameter{p1, p2}, true)
	require.NoError(t, err)
	next, stop := iter.Pull(globbing.Slots())
	defer stop()
	var got []*Parameter
	for i := 0; i < 4; i++ {
		p, ok := next()
		require.True(t, ok)
		got = append(got, p)
	}
	assert.Equal(t, []*Parameter{p1, p2, p2, p2}, got)
}

func TestPositionals_GlobbingWithoutSlots(t *testing.T) {
	_, err := NewPositionals(nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "globbing requires at least one positional")
	assert.False(t, errors.Is(err, ErrDuplicateDefinition))

	_, err = NewDefinitions(nil, []*Parameter{o1}, WithGlobbing())
	assert.Error(t, err)

	ps, err := NewPositionals(nil, false)
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(ps.Slots()))
}

func TestPositionals_KeysAndIndex(t *testing.T) {
	ps, err := NewPositionals([]*Parameter{p1, p2}, false)
	require.NoError(t, err)

	assert.Equal(t, append(p1.Keys(), p2.Keys()...), ps.Keys())

	tests := []struct {
		key   string
		index int
		found bool
	}{
		{"param1", 0, true},
		{"prm1", 0, true},
		{"param2", 1, true},
		{"p2", 1, true},
		{"implausible", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			i, ok := ps.Index(tt.key)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.index, i)
		})
	}
}

func TestPositionals_Duplicates(t *testing.T) {
	_, err := NewPositionals([]*Parameter{p1, NewPositional("param2", WithAliases("p1"))}, false)
	assert.True(t, errors.Is(err, ErrDuplicateDefinition))
}

func TestPositionals_ValidateCount(t *testing.T) {
	ps, err := NewPositionals([]*Parameter{p1, p2}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, ps.MinCount())
	most, bounded := ps.MaxCount()
	assert.True(t, bounded)
	assert.Equal(t, 2, most)

	assert.NoError(t, ps.ValidateCount(1))
	assert.NoError(t, ps.ValidateCount(2))
	assert.True(t, errors.Is(ps.ValidateCount(0), ErrTooFewPositionals))
	assert.True(t, errors.Is(ps.ValidateCount(0), ErrMissingRequired))
	assert.True(t, errors.Is(ps.ValidateCount(3), ErrTooManyPositionals))

	globbing, err := NewPositionals([]*Parameter{p1, p2}, true)
	require.NoError(t, err)
	_, bounded = globbing.MaxCount()
	assert.False(t, bounded)
	assert.True(t, errors.Is(globbing.ValidateCount(0), ErrTooFewPositionals))
	assert.NoError(t, globbing.ValidateCount(1000))
}
