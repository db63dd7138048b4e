package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ggoodman/clnplugin-go/internal/framing"
	"github.com/ggoodman/clnplugin-go/internal/jsonrpc"
	"github.com/ggoodman/clnplugin-go/internal/logctx"
	"github.com/ggoodman/clnplugin-go/internal/wire"
)

// Serve runs the read loop until the input stream ends, the context is
// canceled, or an unrecoverable write error occurs. Messages are dispatched
// one at a time in the order they arrive; a failing message produces an
// error response and never stops the loop. Serve may be called at most once.
//
// When the input stream closes Serve returns an error wrapping both
// ErrStreamTerminated and the read error (typically io.EOF). A canceled
// context is only observed between reads.
func (p *Plugin) Serve(ctx context.Context) error {
	if !p.served.CompareAndSwap(false, true) {
		return errors.New("plugin: Serve called more than once")
	}

	ctx = logctx.WithPluginData(ctx, &logctx.PluginData{InstanceID: p.id})

	if p.autopatch && p.cfg.Plugin {
		restore := p.RedirectToLog()
		defer restore()
	}

	p.interceptInit()

	p.logger.DebugContext(ctx, "serving", slog.Int("methods", len(p.registry.Methods())))

	r := framing.NewReader(p.r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frames, readErr := r.Next()
		for _, frame := range frames {
			if err := p.handleFrame(ctx, frame); err != nil {
				return err
			}
		}
		if readErr != nil {
			if pending := bytes.TrimSpace(r.Pending()); len(pending) > 0 {
				p.logger.WarnContext(ctx, "discarding unterminated frame", slog.Int("bytes", len(pending)))
			}
			return fmt.Errorf("%w: %w", ErrStreamTerminated, readErr)
		}
	}
}

// handleFrame decodes and dispatches one frame. Only a failure to write to
// the output stream is returned; every other failure becomes a response.
func (p *Plugin) handleFrame(ctx context.Context, frame []byte) error {
	if len(bytes.TrimSpace(frame)) == 0 {
		return nil
	}

	req, err := jsonrpc.DecodeRequest(frame)
	if err != nil {
		method := ""
		var id *jsonrpc.RequestID
		if req != nil {
			method, id = req.Method, req.ID
		}
		p.logger.WarnContext(ctx, "invalid request", slog.String("method", method), slog.Any("error", err))
		p.logDetail(ctx, fmt.Sprintf("Invalid request %q: %v", frame, err))

		code := jsonrpc.ErrorCodeInvalidRequest
		if req == nil {
			code = jsonrpc.ErrorCodeParseError
		}
		return p.writeResponse(ctx, jsonrpc.NewErrorResponse(id, code, errorMessage(method), nil))
	}

	msgType := "request"
	if req.IsNotification() {
		msgType = "notification"
	}
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: req.Method, ID: req.ID.String(), Type: msgType})

	result, err := p.Dispatch(ctx, req)
	if req.IsNotification() {
		if err != nil {
			p.reportFailure(ctx, req, err)
		}
		return nil
	}

	if err != nil {
		return p.writeResponse(ctx, p.reportFailure(ctx, req, err))
	}

	resp, err := jsonrpc.NewResultResponse(req.ID, result)
	if err != nil {
		return p.writeResponse(ctx, p.reportFailure(ctx, req, err))
	}
	return p.writeResponse(ctx, resp)
}

// reportFailure logs the failure detail to the host and builds the matching
// error response.
func (p *Plugin) reportFailure(ctx context.Context, req *Request, err error) *jsonrpc.Response {
	p.logger.WarnContext(ctx, "dispatch failed", slog.Any("error", err))

	var (
		rpcErr  *RPCError
		bindErr *BindingError
		hErr    *HandlerError
	)
	switch {
	case errors.Is(err, ErrUnknownMethod):
		p.logDetail(ctx, err.Error())
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound, fmt.Sprintf("%s: %v", errorMessage(req.Method), err), nil)
	case errors.As(err, &bindErr):
		p.logDetail(ctx, err.Error())
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, fmt.Sprintf("%s: %s", errorMessage(req.Method), bindErr.Reason), nil)
	case errors.As(err, &rpcErr):
		p.logDetail(ctx, fmt.Sprintf("%s: %v", errorMessage(req.Method), err))
		return &jsonrpc.Response{JSONRPCVersion: jsonrpc.ProtocolVersion, Error: rpcErr, ID: req.ID}
	case errors.As(err, &hErr):
		p.logDetail(ctx, fmt.Sprintf("%v\n%s", hErr, hErr.Stack))
	default:
		p.logDetail(ctx, fmt.Sprintf("%s: %v", errorMessage(req.Method), err))
	}
	return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError, errorMessage(req.Method), nil)
}

func errorMessage(method string) string {
	return fmt.Sprintf("Error while processing %s", method)
}

// logDetail sends diagnostic detail to the host. A failure is only logged
// locally; the response that follows will surface the broken stream.
func (p *Plugin) logDetail(ctx context.Context, detail string) {
	if err := p.Log(LevelWarn, detail); err != nil {
		p.logger.ErrorContext(ctx, "failed to send log notification", slog.Any("error", err))
	}
}

func (p *Plugin) writeResponse(ctx context.Context, resp *jsonrpc.Response) error {
	if err := wire.WriteJSON(ctx, p.out, resp); err != nil {
		p.logger.ErrorContext(ctx, "failed to write response", slog.Any("error", err))
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
