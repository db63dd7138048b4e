package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
)

// Request is the raw JSON-RPC request being dispatched.
type Request = jsonrpc.Request

// Call carries the arguments bound for a single dispatch.
type Call struct {
	// Method is the name the request was dispatched under.
	Method string
	// Plugin is the owning plugin, set when the method declares PluginParam.
	Plugin *Plugin
	// Request is the raw request, set when the method declares RequestParam.
	Request *Request

	args map[string]json.RawMessage
}

// Has reports whether name is bound, either supplied by the caller or filled
// from its default.
func (c *Call) Has(name string) bool {
	_, ok := c.args[name]
	return ok
}

// Decode unmarshals the bound value of name into v.
func (c *Call) Decode(name string, v any) error {
	raw, ok := c.args[name]
	if !ok {
		return fmt.Errorf("parameter %q is not bound", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return bindingErrorf(c.Method, "parameter %q: %v", name, err)
	}
	return nil
}

// String returns the bound value of name as a string. Non-string JSON values
// are returned in their encoded form.
func (c *Call) String(name string) string {
	raw, ok := c.args[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// Bind unmarshals all bound arguments, as a JSON object keyed by parameter
// name, into v.
func (c *Call) Bind(v any) error {
	b, err := json.Marshal(c.args)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return bindingErrorf(c.Method, "%v", err)
	}
	return nil
}
