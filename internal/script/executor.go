// Package script runs the Starlark bodies of scripted tools.
package script

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Result holds the outcome of a scripted tool run. Script-level failures
// land in Error rather than aborting the call.
type Result struct {
	Value interface{} `json:"value,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Run executes a tool body with the call arguments bound to the `args`
// dict. The script communicates its outcome by assigning to a top-level
// `result` variable.
func Run(code string, args map[string]interface{}) (*Result, error) {
	thread := &starlark.Thread{Name: "scripted_tool"}

	argsDict := starlark.NewDict(len(args))
	for key, value := range args {
		converted, err := toStarlark(value)
		if err != nil {
			return &Result{Error: fmt.Sprintf("argument conversion error: %v", err)}, nil
		}
		if err := argsDict.SetKey(starlark.String(key), converted); err != nil {
			return &Result{Error: fmt.Sprintf("argument conversion error: %v", err)}, nil
		}
	}
	predeclared := starlark.StringDict{"args": argsDict}

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	globals, err := starlark.ExecFileOptions(opts, thread, "<tool>", code, predeclared)
	if err != nil {
		return &Result{Error: fmt.Sprintf("execution error: %v", err)}, nil
	}

	out, ok := globals["result"]
	if !ok {
		return &Result{}, nil
	}
	value, err := fromStarlark(out)
	if err != nil {
		return &Result{Error: fmt.Sprintf("result conversion error: %v", err)}, nil
	}
	return &Result{Value: value}, nil
}
