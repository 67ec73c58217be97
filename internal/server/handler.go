package server

import (
	"context"
	"errors"
	"time"

	"github.com/wirecache/wirecache/internal/command"
	"github.com/wirecache/wirecache/internal/proto"
	"github.com/wirecache/wirecache/internal/storage"
	"github.com/wirecache/wirecache/internal/telemetry/logger"
	"github.com/wirecache/wirecache/internal/telemetry/metric"
)

// Handler executes typed commands against the storage engine and
// builds the wire reply. It logs through the connection-scoped logger
// carried in the request context.
type Handler struct {
	engine  storage.Engine
	metrics *metric.Metrics
}

// NewHandler creates a new command handler. metrics may be nil.
func NewHandler(engine storage.Engine, metrics *metric.Metrics) *Handler {
	return &Handler{
		engine:  engine,
		metrics: metrics,
	}
}

// Execute runs cmd and returns the reply value. Engine failures become
// wire error replies, never connection teardowns.
func (h *Handler) Execute(ctx context.Context, cmd command.Command) proto.Value {
	start := time.Now()

	reply, err := h.execute(ctx, cmd)
	if err != nil {
		logger.L(ctx).Error("command failed",
			"command", cmd.Name(),
			"error", err)
		reply = proto.ErrorString("ERR " + err.Error())
	}

	if h.metrics != nil {
		h.metrics.CommandsTotal.WithLabelValues(cmd.Name()).Inc()
		h.metrics.CommandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
	}

	return reply
}

func (h *Handler) execute(ctx context.Context, cmd command.Command) (proto.Value, error) {
	switch c := cmd.(type) {
	case command.Set:
		return h.executeSet(ctx, c)

	case command.Get:
		value, err := h.engine.Get(ctx, c.Key)
		if err != nil {
			if errors.Is(err, storage.ErrKeyNotFound) {
				return proto.NullBulkString(), nil
			}
			return proto.Value{}, err
		}
		return proto.BulkString(value), nil

	case command.GetSet:
		old, existed, err := h.engine.GetSet(ctx, c.Key, c.Value.Encode())
		if err != nil {
			return proto.Value{}, err
		}
		if !existed {
			return proto.NullBulkString(), nil
		}
		return proto.BulkString(old), nil

	case command.StrLen:
		n, err := h.engine.StrLen(ctx, c.Key)
		if err != nil {
			return proto.Value{}, err
		}
		return proto.Integer(n), nil

	case command.Exists:
		ok, err := h.engine.Exists(ctx, c.Key)
		if err != nil {
			return proto.Value{}, err
		}
		if ok {
			return proto.Integer(1), nil
		}
		return proto.Integer(0), nil

	case command.Del:
		removed, err := h.engine.Del(ctx, c.Keys...)
		if err != nil {
			return proto.Value{}, err
		}
		return proto.Integer(removed), nil

	default:
		return proto.ErrorString("ERR unknown command '" + cmd.Name() + "'"), nil
	}
}

func (h *Handler) executeSet(ctx context.Context, c command.Set) (proto.Value, error) {
	opts := storage.SetOptions{
		IfNotExists: c.Mode == command.ModeNX,
		IfExists:    c.Mode == command.ModeXX,
	}
	if c.HasExpire {
		opts.TTL = c.Expire
	}

	applied, err := h.engine.Set(ctx, c.Key, c.Value.Encode(), opts)
	if err != nil {
		return proto.Value{}, err
	}
	if !applied {
		// The NX/XX condition did not hold.
		return proto.NullBulkString(), nil
	}
	return proto.SimpleString("OK"), nil
}
