package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Transform is a mutation or validation applied to a Frame.
// Column-local steps mutate the frame they are given; structural steps
// (reshape, grid fill) return a new frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
	log   *slog.Logger
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// WithLogger reports every step at debug level and a summary at info level.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.log = l
	return p
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.Name()
	}
	return out
}

// Run applies every step in order to a copy of f; f itself is left untouched.
func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	log := p.log
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	cur := f.Clone()
	for _, t := range p.steps {
		stepStart := time.Now()
		out, err := t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", t.Name(), err)
		}
		cur = out
		log.Debug("step done", "step", t.Name(), "rows", cur.Rows(), "cols", cur.Cols(), "took", time.Since(stepStart))
	}
	log.Info("pipeline done", "steps", len(p.steps), "rows", cur.Rows(), "cols", cur.Cols(), "took", time.Since(start))
	return cur, nil
}
