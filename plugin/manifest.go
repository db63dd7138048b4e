package plugin

import (
	"context"
	"fmt"
)

const (
	methodGetManifest = "getmanifest"

	undocumentedDescription = "Undocumented RPC method from a plugin."
)

// Manifest describes the methods and options the plugin exposes.
type Manifest struct {
	Options    []ManifestOption `json:"options"`
	RPCMethods []ManifestMethod `json:"rpcmethods"`
}

// ManifestMethod is one entry of Manifest.RPCMethods.
type ManifestMethod struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage,omitempty"`
}

// ManifestOption declares a command line option the host should accept on
// the plugin's behalf.
type ManifestOption struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     any    `json:"default"`
	Description string `json:"description"`
}

// AddOption declares a string option. Its value is available through Option
// once init has been received.
func (p *Plugin) AddOption(name string, def string, description string) error {
	if name == "" {
		return fmt.Errorf("option name must not be empty")
	}
	p.optMu.Lock()
	defer p.optMu.Unlock()

	for _, o := range p.options {
		if o.Name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateOption, name)
		}
	}
	p.options = append(p.options, ManifestOption{
		Name:        name,
		Type:        "string",
		Default:     def,
		Description: description,
	})
	return nil
}

func (p *Plugin) manifestMethod() *Method {
	return &Method{
		Name: methodGetManifest,
		Handler: func(ctx context.Context, _ *Call) (any, error) {
			return p.Manifest(ctx), nil
		},
		params:  mustParamSet(),
		builtin: true,
	}
}

// Manifest builds the manifest returned by getmanifest. Built-in methods are
// never listed. Undocumented methods get a placeholder description and a
// warning is logged to the host.
func (p *Plugin) Manifest(ctx context.Context) *Manifest {
	m := &Manifest{
		Options:    []ManifestOption{},
		RPCMethods: []ManifestMethod{},
	}

	p.optMu.RLock()
	m.Options = append(m.Options, p.options...)
	p.optMu.RUnlock()

	for _, method := range p.registry.Methods() {
		if method.builtin || method.Name == methodGetManifest || method.Name == methodInit {
			continue
		}
		desc := method.Description
		if desc == "" {
			if err := p.Logf(LevelWarn, "RPC method '%s' does not have a docstring.", method.Name); err != nil {
				p.logger.WarnContext(ctx, "failed to send log notification", "error", err)
			}
			desc = undocumentedDescription
		}
		m.RPCMethods = append(m.RPCMethods, ManifestMethod{
			Name:        method.Name,
			Description: desc,
			Usage:       method.Usage(),
		})
	}
	return m
}
