package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
)

// Dispatch resolves req against the registry, binds its params and invokes
// the handler. Errors returned by the handler are propagated unchanged; a
// panicking handler yields a *HandlerError.
func (p *Plugin) Dispatch(ctx context.Context, req *Request) (any, error) {
	m, ok := p.registry.Lookup(req.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, req.Method)
	}

	call, err := p.bind(m, req)
	if err != nil {
		return nil, err
	}

	return invoke(ctx, m, call)
}

func invoke(ctx context.Context, m *Method, call *Call) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("panic: %v", r)
			}
			result = nil
			err = &HandlerError{Method: m.Name, Err: perr, Stack: debug.Stack()}
		}
	}()
	return m.Handler(ctx, call)
}

func (p *Plugin) bind(m *Method, req *Request) (*Call, error) {
	ps := m.params
	call := &Call{Method: m.Name, args: make(map[string]json.RawMessage, len(ps.all))}

	switch req.Kind() {
	case jsonrpc.ParamsNone:
	case jsonrpc.ParamsArray:
		var values []json.RawMessage
		if err := json.Unmarshal(req.Params, &values); err != nil {
			return nil, bindingErrorf(m.Name, "malformed params: %v", err)
		}
		if len(values) > len(ps.positional) {
			return nil, bindingErrorf(m.Name, "too many parameters: got %d, expected %d", len(values), len(ps.positional))
		}
		for i, v := range values {
			if isNull(v) {
				continue
			}
			call.args[ps.positional[i]] = v
		}
	case jsonrpc.ParamsObject:
		var values map[string]json.RawMessage
		if err := json.Unmarshal(req.Params, &values); err != nil {
			return nil, bindingErrorf(m.Name, "malformed params: %v", err)
		}
		for name, v := range values {
			if !ps.declared[name] {
				return nil, bindingErrorf(m.Name, "unknown parameter: '%s'", name)
			}
			if isNull(v) {
				continue
			}
			call.args[name] = v
		}
	default:
		return nil, bindingErrorf(m.Name, "expected array or object for params")
	}

	if ps.wantPlugin {
		if _, supplied := call.args[ParamPlugin]; !supplied {
			call.Plugin = p
		}
	}
	if ps.wantReq {
		if _, supplied := call.args[ParamRequest]; !supplied {
			call.Request = req
		}
	}

	for _, name := range ps.positional {
		if _, ok := call.args[name]; ok {
			continue
		}
		def, optional := ps.defaults[name]
		if !optional {
			return nil, bindingErrorf(m.Name, "missing required parameter: '%s'", name)
		}
		call.args[name] = def
	}

	return call, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
