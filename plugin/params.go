package plugin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reserved parameter names. A method that declares one of these receives the
// owning plugin or the raw request on its Call, unless the caller supplied a
// value under the same name. They are bound by name only and never take part
// in positional binding.
const (
	ParamPlugin  = "plugin"
	ParamRequest = "request"
)

var (
	// PluginParam declares interest in the owning *Plugin (Call.Plugin).
	PluginParam = Param{Name: ParamPlugin}
	// RequestParam declares interest in the raw request (Call.Request).
	RequestParam = Param{Name: ParamRequest}
)

// Param declares one named parameter of a method.
type Param struct {
	Name     string
	Required bool
	Default  any
}

// Required declares a parameter the caller must supply.
func Required(name string) Param {
	return Param{Name: name, Required: true}
}

// Optional declares a parameter that takes def when the caller omits it or
// passes null.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def}
}

func isReserved(name string) bool {
	return name == ParamPlugin || name == ParamRequest
}

// paramSet is the validated, immutable form of a method's declaration.
type paramSet struct {
	all        []Param
	positional []string
	defaults   map[string]json.RawMessage
	declared   map[string]bool
	wantPlugin bool
	wantReq    bool
}

func newParamSet(params []Param) (*paramSet, error) {
	ps := &paramSet{
		all:      append([]Param(nil), params...),
		defaults: make(map[string]json.RawMessage),
		declared: make(map[string]bool, len(params)),
	}
	seenOptional := false
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: empty parameter name", ErrInvalidParam)
		}
		if ps.declared[p.Name] {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidParam, p.Name)
		}
		ps.declared[p.Name] = true

		switch p.Name {
		case ParamPlugin:
			ps.wantPlugin = true
			continue
		case ParamRequest:
			ps.wantReq = true
			continue
		}

		if p.Required {
			if seenOptional {
				return nil, fmt.Errorf("%w: required parameter %q follows an optional one", ErrInvalidParam, p.Name)
			}
		} else {
			seenOptional = true
			def, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("%w: default for %q: %v", ErrInvalidParam, p.Name, err)
			}
			ps.defaults[p.Name] = def
		}
		ps.positional = append(ps.positional, p.Name)
	}
	return ps, nil
}

// usage renders the parameter list with optional parameters in brackets.
func (ps *paramSet) usage() string {
	parts := make([]string, 0, len(ps.positional))
	for _, p := range ps.all {
		if isReserved(p.Name) {
			continue
		}
		if p.Required {
			parts = append(parts, p.Name)
		} else {
			parts = append(parts, "["+p.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}
