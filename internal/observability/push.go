package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the job metrics to a Prometheus Pushgateway, replacing the
// previous values for the job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m.registry == nil {
		return errors.New("metrics have no registry")
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
