package prize

import (
	"context"

	"go.uber.org/zap"

	"luckycard/internal/rng"
)

type requestIDKey struct{}

// WithRequestID tags ctx so draw logs can be correlated with a request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Outcome is the result of a single draw.
type Outcome struct {
	Index int
	Label string
	IsWin bool
	// Fallback is set when the fixed fallback index was used.
	Fallback bool
}

// Resolver draws uniformly from a prize table.
type Resolver struct {
	table Table
	src   rng.Source
	log   *zap.Logger
}

// NewResolver builds a Resolver. The table must already be valid.
func NewResolver(table Table, src rng.Source, log *zap.Logger) *Resolver {
	if src == nil {
		src = rng.Crypto{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{table: table, src: src, log: log}
}

// Table returns the resolver's prize table.
func (r *Resolver) Table() Table {
	return r.table
}

// Draw picks one label with probability 1/len(table). It never fails: a
// broken random source yields the fallback index. ctx only carries the
// request ID for logging; cancellation does not affect the draw.
func (r *Resolver) Draw(ctx context.Context) Outcome {
	fields := []zap.Field{}
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	n, err := r.src.IntN(len(r.table.Labels))
	if err != nil || n < 0 || n >= len(r.table.Labels) {
		r.log.Warn("random source unavailable, using fallback",
			append(fields, zap.Error(err), zap.Int("index", n))...)
		return r.outcome(r.table.FallbackIndex, true)
	}

	out := r.outcome(n, false)
	r.log.Debug("prize drawn", append(fields, zap.Int("index", n), zap.Bool("win", out.IsWin))...)
	return out
}

func (r *Resolver) outcome(i int, fallback bool) Outcome {
	label := r.table.Labels[i]
	return Outcome{
		Index:    i,
		Label:    label,
		IsWin:    r.table.IsWin(label),
		Fallback: fallback,
	}
}
