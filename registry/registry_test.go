package registry_test

import (
	"testing"

	"github.com/oarkflow/qwery/registry"
	"github.com/oarkflow/qwery/scope"
	"github.com/oarkflow/qwery/value"
)

func call(t *testing.T, s scope.Scope, name string, args ...value.Value) any {
	t.Helper()
	fn, ok := s.LookupFunc(name)
	if !ok {
		t.Fatalf("expected %s to be registered", name)
	}
	evArgs := make([]scope.Evaluable, len(args))
	for i, a := range args {
		evArgs[i] = a
	}
	v, err := fn(evArgs, s)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return v
}

func TestUpperLower(t *testing.T) {
	s := scope.New()
	registry.Register(s)
	if v := call(t, s, "upper", &value.Literal{Payload: "abc"}); v != "ABC" {
		t.Fatalf("expected ABC, got %v", v)
	}
	if v := call(t, s, "lower", &value.Literal{Payload: "ABC"}); v != "abc" {
		t.Fatalf("expected abc, got %v", v)
	}
}

func TestLen(t *testing.T) {
	s := scope.New()
	registry.Register(s)
	if v := call(t, s, "len", &value.Literal{Payload: "hello"}); v != 5.0 {
		t.Fatalf("expected 5, got %v", v)
	}
}

func TestCoalesce(t *testing.T) {
	s := scope.New()
	registry.Register(s)
	v := call(t, s, "coalesce", &value.Literal{Payload: nil}, &value.Literal{Payload: "fallback"})
	if v != "fallback" {
		t.Fatalf("expected fallback, got %v", v)
	}
}

func TestCountScalar(t *testing.T) {
	s := scope.New()
	registry.Register(s)
	if v := call(t, s, "count", &value.Literal{Payload: "x"}); v != 1.0 {
		t.Fatalf("expected 1, got %v", v)
	}
	if v := call(t, s, "count", &value.Literal{Payload: nil}); v != 0.0 {
		t.Fatalf("expected 0, got %v", v)
	}
}
