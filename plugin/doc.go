// Package plugin implements the callee side of the daemon plugin protocol:
// JSON-RPC 2.0 over the process's stdin and stdout, with every message
// terminated by two newlines.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 host daemon
//	Role             : callee; the host issues requests, the plugin answers
//	Transport        : "\n\n" framed JSON on stdin / stdout
//	Concurrency      : one message at a time, in arrival order
//
// A plugin registers methods with their declared parameters, optionally
// declares options, and calls Serve:
//
//	p := plugin.New()
//	_ = p.AddOption("greeting", "Hello", "The greeting to use.")
//	p.Method("hello", "Greet someone.", func(ctx context.Context, c *plugin.Call) (any, error) {
//	    return c.Plugin.OptionString("greeting") + " " + c.String("name"), nil
//	}, plugin.Optional("name", "world"), plugin.PluginParam)
//	err := p.Serve(context.Background())
//
// The host first calls getmanifest, which lists every registered method except
// the built-ins, then init with the option values and daemon configuration.
// A user "init" method runs after the plugin has recorded them.
//
// Params arrive either positionally (a JSON array matched against the
// declared parameters in order) or by name (a JSON object). The reserved
// parameters PluginParam and RequestParam are bound by name only.
//
// Anything written to the stdout stream outside the protocol would corrupt
// it. When started by the daemon (LIGHTNINGD_PLUGIN set), Serve routes the
// plugin's Stdout and Stderr sinks through Stream, which turns each line into
// a log notification.
package plugin
