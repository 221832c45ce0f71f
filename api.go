// api.go — the embedding surface: parse, evaluate, and the errors each can
// produce. This is the only file a host program needs to import alongside
// the value/Environment types to run a program end to end.
package glint

import (
	"context"
	"fmt"
)

// ParseProgram parses src into a Block, tagging every diagnostic with key
// (an import key or a caller-chosen display name for a top-level program).
func ParseProgram(src, key string) (*Block, error) {
	blk, err := Parse(src, key)
	if err != nil {
		return nil, err
	}
	return blk, nil
}

// Evaluate parses and evaluates src as a single top-level program against
// env, returning the result value or the first Diagnostic encountered.
// env's base path is used to resolve any relative imports in src; pass
// WithBasePath to NewEnvironment to change it from the "/" default.
func Evaluate(src string, env *Environment) (Value, error) {
	return EvaluateContext(context.Background(), src, env)
}

// EvaluateContext is Evaluate with a caller-supplied cancellation context,
// checked cooperatively at block entry and each comprehension iteration.
func EvaluateContext(ctx context.Context, src string, env *Environment) (Value, error) {
	if env == nil {
		return Value{}, fmt.Errorf("glint: nil Environment")
	}
	blk, err := ParseProgram(src, env.basePath)
	if err != nil {
		return Value{}, err
	}
	return EvalProgram(ctx, blk, env.Root().Child(), env)
}
