package plugin

import (
	"context"
	"errors"
	"testing"
)

func constHandler(v any) HandlerFunc {
	return func(context.Context, *Call) (any, error) { return v, nil }
}

func TestRegistryDuplicateKeepsFirst(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("m", "first", constHandler("one")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register("m", "second", constHandler("two"))
	if !errors.Is(err, ErrDuplicateMethod) {
		t.Fatalf("expected ErrDuplicateMethod, got %v", err)
	}

	m, ok := r.Lookup("m")
	if !ok {
		t.Fatalf("method missing after failed re-registration")
	}
	if m.Description != "first" {
		t.Fatalf("expected first binding to remain, got %q", m.Description)
	}
	got, _ := m.Handler(context.Background(), &Call{})
	if got != "one" {
		t.Fatalf("expected first handler, got %v", got)
	}
	if n := len(r.Methods()); n != 1 {
		t.Fatalf("expected 1 method, got %d", n)
	}
}

func TestRegistryRejectsBadDeclarations(t *testing.T) {
	cases := []struct {
		name   string
		params []Param
	}{
		{"duplicate", []Param{Required("a"), Required("a")}},
		{"required after optional", []Param{Optional("a", 1), Required("b")}},
		{"empty name", []Param{{Name: ""}}},
		{"unmarshalable default", []Param{Optional("a", make(chan int))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register("m", "", constHandler(nil), tc.params...)
			if !errors.Is(err, ErrInvalidParam) {
				t.Fatalf("expected ErrInvalidParam, got %v", err)
			}
			if _, ok := r.Lookup("m"); ok {
				t.Fatalf("method registered despite invalid declaration")
			}
		})
	}
}

func TestRegistryReservedParamsMayFollowOptional(t *testing.T) {
	r := NewRegistry()
	err := r.Register("m", "", constHandler(nil), Required("a"), Optional("b", nil), PluginParam, RequestParam)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	m, _ := r.Lookup("m")
	if got := m.Usage(); got != "a [b]" {
		t.Fatalf("unexpected usage %q", got)
	}
	if n := len(m.Params()); n != 4 {
		t.Fatalf("expected 4 declared params, got %d", n)
	}
}

func TestRegistryMethodsInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := r.Register(name, "", constHandler(nil)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	var got []string
	for _, m := range r.Methods() {
		got = append(got, m.Name)
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestRegistryRejectsNilHandlerAndEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", "", constHandler(nil)); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := r.Register("m", "", nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}
