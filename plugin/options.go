package plugin

import (
	"io"
	"log/slog"
)

// Option customizes a Plugin.
type Option func(*Plugin)

// WithIO sets the input and output streams of the wire protocol.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(p *Plugin) {
		if r != nil {
			p.r = r
		}
		if w != nil {
			p.w = w
		}
	}
}

// WithReader overrides the input stream.
func WithReader(r io.Reader) Option {
	return func(p *Plugin) {
		if r != nil {
			p.r = r
		}
	}
}

// WithWriter overrides the output stream.
func WithWriter(w io.Writer) Option {
	return func(p *Plugin) {
		if w != nil {
			p.w = w
		}
	}
}

// WithLogger overrides the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithHostLogging sends diagnostics to the host as log notifications at or
// above level.
func WithHostLogging(level slog.Leveler) Option {
	return func(p *Plugin) {
		p.logger = slog.New(NewLogHandler(p, &slog.HandlerOptions{Level: level}))
	}
}

// WithConfig overrides the configuration otherwise loaded from the environment.
func WithConfig(cfg Config) Option {
	return func(p *Plugin) {
		p.cfg = &cfg
	}
}

// WithAutopatch controls whether Serve redirects the plugin's stdout and
// stderr sinks into log notifications when Config.Plugin is set. Enabled by
// default.
func WithAutopatch(enabled bool) Option {
	return func(p *Plugin) {
		p.autopatch = enabled
	}
}
