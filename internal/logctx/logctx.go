package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the plugin instance and the RPC message
// being dispatched, when present in the context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if pd, ok := ctx.Value(pluginDataKey{}).(*PluginData); ok {
		r.AddAttrs(slog.Group("plugin",
			slog.String("instance", pd.InstanceID),
		))
	}

	if msg, ok := ctx.Value(rpcMsg{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
			slog.String("type", msg.Type),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type rpcMsg struct{}

type RPCMessage struct {
	Method string
	ID     string
	Type   string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsg{}, msg)
}

type pluginDataKey struct{}

type PluginData struct {
	InstanceID string
}

func WithPluginData(ctx context.Context, data *PluginData) context.Context {
	return context.WithValue(ctx, pluginDataKey{}, data)
}
