package caller

import (
	"errors"
	"slices"

	"github.com/kballard/go-shellquote"
)

// Cmdline is a compiled command line: the program followed by its arguments,
// one argv element per token.
type Cmdline []string

// Program returns the first token, or "" for an empty command line.
func (c Cmdline) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns every token after the program.
func (c Cmdline) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return slices.Clone(c[1:])
}

// String renders the command line quoted for a POSIX shell. It is meant for
// display and logging; executors receive the tokens directly.
func (c Cmdline) String() string {
	return shellquote.Join(c...)
}

// ParseCommand splits a command prefix written as a single shell string,
// such as "fslmaths -dt float", into tokens.
func ParseCommand(command string) (Cmdline, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.New("caller: empty command")
	}
	return Cmdline(words), nil
}
