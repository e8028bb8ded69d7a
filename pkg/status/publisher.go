package status

import (
	"context"

	fx "github.com/robotalks/splitkbd/pkg/framework"
)

// Publisher delivers snapshots to monitors.
type Publisher interface {
	Publish(context.Context, *Snapshot) error
}

// PublishFunc is the func form of Publisher.
type PublishFunc func(context.Context, *Snapshot) error

// Publish implements Publisher.
func (f PublishFunc) Publish(ctx context.Context, s *Snapshot) error {
	return f(ctx, s)
}

// Mux publishes to all publishers.
type Mux []Publisher

// Publish implements Publisher. All publishers are invoked and the
// errors are aggregated.
func (m Mux) Publish(ctx context.Context, s *Snapshot) error {
	var errs fx.AggregatedError
	for _, p := range m {
		errs.Add(p.Publish(ctx, s))
	}
	return errs.Aggregate()
}
