package plugin

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ggoodman/clnplugin-go/internal/logctx"
	"github.com/ggoodman/clnplugin-go/internal/wire"
)

// Plugin is the process-wide plugin state: the method registry, declared
// options, the init handshake and the active output streams. Construct one
// per process with New and pass it to whatever needs it.
type Plugin struct {
	id        string
	cfg       *Config
	autopatch bool

	r      io.Reader
	w      io.Writer
	out    wire.MessageWriter
	logger *slog.Logger

	registry *Registry

	optMu   sync.RWMutex
	options []ManifestOption
	values  map[string]any
	conf    Configuration

	sinkMu sync.RWMutex
	stdout io.Writer
	stderr io.Writer

	initMu      sync.Mutex
	initState   initState
	stashedInit *Method

	served atomic.Bool
}

// New constructs a Plugin reading from os.Stdin and writing to os.Stdout
// unless overridden by options.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		id:        uuid.NewString(),
		autopatch: true,
		r:         os.Stdin,
		w:         os.Stdout,
		registry:  NewRegistry(),
		values:    make(map[string]any),
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}

	var cfgErr error
	if p.cfg == nil {
		cfg, err := LoadConfig()
		if err != nil {
			cfgErr = err
			cfg = Config{LogLevel: "info"}
		}
		p.cfg = &cfg
	}
	fw := wire.NewFrameWriter(p.w)
	p.out = fw
	p.stdout = fw

	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(sinkWriter{p: p}, &slog.HandlerOptions{Level: p.cfg.Level()}))
	}
	p.logger = slog.New(logctx.Handler{Handler: p.logger.Handler()}).With(slog.String("component", "plugin"))
	if cfgErr != nil {
		p.logger.Warn("invalid environment configuration, using defaults", slog.Any("error", cfgErr))
	}

	if err := p.registry.add(p.manifestMethod()); err != nil {
		panic(fmt.Sprintf("plugin: register getmanifest: %v", err))
	}
	return p
}

// ID returns the unique id of this plugin instance.
func (p *Plugin) ID() string { return p.id }

// Config returns the configuration the plugin was constructed with.
func (p *Plugin) Config() Config { return *p.cfg }

// Logger returns the diagnostics logger.
func (p *Plugin) Logger() *slog.Logger { return p.logger }

// Registry returns the method registry.
func (p *Plugin) Registry() *Registry { return p.registry }

// AddMethod registers handler under name. It fails with ErrDuplicateMethod
// if the name is already bound. A method registered as "init" runs after the
// host's init call has been recorded and must accept the options and
// configuration parameters.
func (p *Plugin) AddMethod(name, description string, handler HandlerFunc, params ...Param) error {
	return p.registry.Register(name, description, handler, params...)
}

// Method is like AddMethod but panics on error. It is meant for setup code
// where a registration failure is a programming error.
func (p *Plugin) Method(name, description string, handler HandlerFunc, params ...Param) {
	if err := p.AddMethod(name, description, handler, params...); err != nil {
		panic(fmt.Sprintf("plugin: %v", err))
	}
}

// sinkWriter writes to whatever stderr sink is active at write time.
type sinkWriter struct{ p *Plugin }

func (s sinkWriter) Write(b []byte) (int, error) {
	return s.p.Stderr().Write(b)
}
