package simulation

import (
	"context"
	"errors"

	"stentsim/internal/models"
)

// FrameSink receives one frame per expansion step. Implementations draw,
// export or otherwise consume the frame; AcceptFrame blocks the simulation
// until it returns.
type FrameSink interface {
	AcceptFrame(ctx context.Context, frame models.Frame) error
}

// FrameSinkFunc adapts an ordinary function to the FrameSink interface.
type FrameSinkFunc func(ctx context.Context, frame models.Frame) error

// AcceptFrame calls f(ctx, frame).
func (f FrameSinkFunc) AcceptFrame(ctx context.Context, frame models.Frame) error {
	return f(ctx, frame)
}

// Discard accepts and drops every frame.
var Discard FrameSink = FrameSinkFunc(func(context.Context, models.Frame) error { return nil })

// MultiSink delivers each frame to every sink in order. The first error
// stops delivery of that frame.
type MultiSink []FrameSink

// AcceptFrame forwards the frame to each sink.
func (m MultiSink) AcceptFrame(ctx context.Context, frame models.Frame) error {
	for _, sink := range m {
		if err := sink.AcceptFrame(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that implements io.Closer and joins the errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, sink := range m {
		if c, ok := sink.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every frame it receives. It is mostly useful in tests and
// for callers that want to post-process a whole run.
type Recorder struct {
	Frames []models.Frame
}

// AcceptFrame appends the frame.
func (r *Recorder) AcceptFrame(_ context.Context, frame models.Frame) error {
	r.Frames = append(r.Frames, frame)
	return nil
}
