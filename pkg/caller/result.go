package caller

import (
	"iter"
	"slices"

	"appcaller/pkg/callertypes"
)

// TagOutput marks parameters whose values name outputs of the program.
const TagOutput = "output"

// PackageOutputs is the default ResultPackager. It copies the invocation's
// exit code and output streams and records the value of every set parameter
// tagged "output" in Result.Fields under the parameter's canonical name.
// Values of a globbing output slot are collected into a slice.
func PackageOutputs(call *Call, inv *callertypes.Invocation) (*callertypes.Result, error) {
	result := &callertypes.Result{
		ID:       call.ID,
		Command:  slices.Clone(call.Command),
		ExitCode: inv.ExitCode,
		Stdout:   inv.Stdout,
		Stderr:   inv.Stderr,
		Duration: inv.Duration,
		Fields:   make(map[string]any),
	}
	if call.Definitions == nil {
		return result, nil
	}

	positionals := call.Definitions.Positionals()
	next, stop := iter.Pull(positionals.Slots())
	defer stop()
	declared := positionals.Len()
	for i, value := range call.Positionals {
		param, ok := next()
		if !ok {
			break
		}
		if !param.HasTag(TagOutput) {
			continue
		}
		if positionals.Globbing() && i >= declared-1 {
			collected, _ := result.Fields[param.Name()].([]any)
			result.Fields[param.Name()] = append(collected, value)
			continue
		}
		result.Fields[param.Name()] = value
	}

	for _, o := range call.Definitions.Options() {
		if value, ok := call.Options[o.Name()]; ok && o.HasTag(TagOutput) {
			result.Fields[o.Name()] = value
		}
	}
	return result, nil
}
