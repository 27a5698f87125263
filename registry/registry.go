// Package registry ships the default builtin scope.Function set:
// NOW, COUNT, UPPER, LOWER, LEN, COALESCE. spec.md §1/§6 keeps the
// function registry external to the core; this is the one default
// implementation a runnable engine ships alongside it.
package registry

import (
	"strings"
	"time"

	"github.com/oarkflow/qwery/qerrors"
	"github.com/oarkflow/qwery/scope"
)

// Register binds the builtin set into s (the local frame only, per
// scope.Scope.BindFunc's contract).
func Register(s scope.Scope) {
	s.BindFunc("now", now)
	s.BindFunc("count", count)
	s.BindFunc("upper", upper)
	s.BindFunc("lower", lower)
	s.BindFunc("len", length)
	s.BindFunc("coalesce", coalesce)
}

func now(args []scope.Evaluable, s scope.Scope) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

// count, called outside an aggregate projection (stmt special-cases
// COUNT inside SELECT), reports 1 when its argument is non-NULL — the
// scalar degenerate case of the aggregate, matching how a bare function
// reference behaves when evaluated per row rather than over a group.
func count(args []scope.Evaluable, s scope.Scope) (any, error) {
	if len(args) == 0 {
		return 1.0, nil
	}
	v, err := args[0].Evaluate(s)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return 0.0, nil
	}
	return 1.0, nil
}

func upper(args []scope.Evaluable, s scope.Scope) (any, error) {
	str, err := stringArg(args, s)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(str), nil
}

func lower(args []scope.Evaluable, s scope.Scope) (any, error) {
	str, err := stringArg(args, s)
	if err != nil {
		return nil, err
	}
	return strings.ToLower(str), nil
}

func length(args []scope.Evaluable, s scope.Scope) (any, error) {
	str, err := stringArg(args, s)
	if err != nil {
		return nil, err
	}
	return float64(len(str)), nil
}

func coalesce(args []scope.Evaluable, s scope.Scope) (any, error) {
	for _, a := range args {
		v, err := a.Evaluate(s)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func stringArg(args []scope.Evaluable, s scope.Scope) (string, error) {
	if len(args) != 1 {
		return "", qerrors.NewRuntimeError("function requires exactly one argument")
	}
	v, err := args[0].Evaluate(s)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	return "", qerrors.NewRuntimeError("function requires a string argument")
}
