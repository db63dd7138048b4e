package plugin

import (
	"context"
	"encoding/json"
	"fmt"
)

type initState int

const (
	stateUninitialized initState = iota
	stateAwaitingInit
	stateInitialized
)

func (s initState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateAwaitingInit:
		return "awaiting_init"
	case stateInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("initState(%d)", int(s))
	}
}

const methodInit = "init"

// Configuration is the daemon configuration delivered with init.
type Configuration struct {
	LightningDir string `json:"lightning-dir"`
	RPCFile      string `json:"rpc-file"`
}

// interceptInit stashes a user "init" handler, if any, and installs the
// internal one in its place. It runs once, before the first message is read.
func (p *Plugin) interceptInit() {
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if p.initState != stateUninitialized {
		return
	}
	if m, ok := p.registry.Lookup(methodInit); ok {
		p.stashedInit = m
	}
	p.registry.replace(&Method{
		Name:    methodInit,
		Handler: p.handleInit,
		params: mustParamSet(
			Optional("options", map[string]any{}),
			Optional("configuration", map[string]any{}),
			RequestParam,
		),
		builtin: true,
	})
	p.initState = stateAwaitingInit
}

func (p *Plugin) handleInit(ctx context.Context, call *Call) (any, error) {
	if call.Request == nil {
		return nil, bindingErrorf(methodInit, "'request' must not be supplied by the caller")
	}
	var options map[string]any
	if err := call.Decode("options", &options); err != nil {
		return nil, err
	}
	var conf Configuration
	if err := call.Decode("configuration", &conf); err != nil {
		return nil, err
	}

	p.optMu.Lock()
	for k, v := range options {
		p.values[k] = v
	}
	p.conf = conf
	p.optMu.Unlock()

	p.initMu.Lock()
	user := p.stashedInit
	if user != nil {
		p.registry.replace(user)
		p.stashedInit = nil
	}
	p.initState = stateInitialized
	p.initMu.Unlock()

	p.logger.DebugContext(ctx, "init received",
		"options", len(options),
		"lightning_dir", conf.LightningDir,
		"user_handler", user != nil,
	)

	if user == nil {
		return nil, nil
	}
	return p.Dispatch(ctx, call.Request)
}

func mustParamSet(params ...Param) *paramSet {
	ps, err := newParamSet(params)
	if err != nil {
		panic(err)
	}
	return ps
}

// Option returns the value the host supplied for a declared option at init,
// falling back to the declared default.
func (p *Plugin) Option(name string) (any, bool) {
	p.optMu.RLock()
	defer p.optMu.RUnlock()

	if v, ok := p.values[name]; ok {
		return v, true
	}
	for _, o := range p.options {
		if o.Name == name {
			return o.Default, true
		}
	}
	return nil, false
}

// OptionString is Option rendered as a string.
func (p *Plugin) OptionString(name string) string {
	v, ok := p.Option(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// LightningDir returns the daemon's directory as reported at init.
func (p *Plugin) LightningDir() string {
	p.optMu.RLock()
	defer p.optMu.RUnlock()
	return p.conf.LightningDir
}

// RPCFile returns the daemon's RPC socket filename as reported at init.
func (p *Plugin) RPCFile() string {
	p.optMu.RLock()
	defer p.optMu.RUnlock()
	return p.conf.RPCFile
}
