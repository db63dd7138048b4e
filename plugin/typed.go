package plugin

import (
	"context"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// TypedHandlerFunc receives params decoded into A.
type TypedHandlerFunc[A any] func(ctx context.Context, call *Call, args A) (any, error)

// TypedMethod registers fn under name, deriving the declared parameters from
// the JSON schema of A: every property becomes a parameter, required unless
// its field is tagged omitempty. Required parameters are declared first, each
// group in field order, which is also the positional order. Extra entries may
// add PluginParam or RequestParam.
func TypedMethod[A any](p *Plugin, name, description string, fn TypedHandlerFunc[A], extra ...Param) error {
	params, err := paramsFromSchema[A]()
	if err != nil {
		return fmt.Errorf("method %q: %w", name, err)
	}
	params = append(params, extra...)

	return p.AddMethod(name, description, func(ctx context.Context, call *Call) (any, error) {
		var args A
		if err := call.Bind(&args); err != nil {
			return nil, err
		}
		return fn(ctx, call, args)
	}, params...)
}

func paramsFromSchema[A any]() ([]Param, error) {
	t := reflect.TypeOf((*A)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: params type must be a struct, got %s", ErrInvalidParam, t)
	}

	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.ReflectFromType(t)
	if s == nil || s.Type != "object" {
		return nil, fmt.Errorf("%w: params type must be a struct", ErrInvalidParam)
	}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	var req, opt []Param
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			if required[el.Key] {
				req = append(req, Required(el.Key))
			} else {
				opt = append(opt, Optional(el.Key, nil))
			}
		}
	}
	return append(req, opt...), nil
}
