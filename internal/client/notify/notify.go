// Package notify delivers achievement-unlock alerts.
package notify

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lingua/internal/client/metrics"
	"github.com/dmitrijs2005/lingua/internal/logging"
)

type Notification struct {
	Title string
	Body  string
	Data  map[string]any
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the logger. It is the fallback when no
// push token is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	if l == nil {
		l = logging.Nop()
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.Info(ctx, msg.Title, "body", msg.Body)
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, x := range m {
		if err := x.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type counted struct {
	name    string
	next    Notifier
	metrics *metrics.Collector
}

// Counted records every delivery attempt of next under name.
func Counted(name string, next Notifier, m *metrics.Collector) Notifier {
	return &counted{name: name, next: next, metrics: m}
}

func (c *counted) Notify(ctx context.Context, n Notification) error {
	err := c.next.Notify(ctx, n)
	c.metrics.RecordNotification(c.name, err)
	return err
}
