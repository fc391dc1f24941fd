package notify

import (
	"context"
	"errors"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/rs/zerolog"
)

// Log writes failure messages as warn-level log records. It is the notifier
// used when no external channel is configured.
type Log struct {
	logger zerolog.Logger
}

var _ goVerify.Notifier = (*Log)(nil)

// NewLog returns a notifier writing to logger.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Notify logs message at warn level with the account id.
func (l *Log) Notify(_ context.Context, accountID, message string) error {
	l.logger.Warn().
		Str("account_id", accountID).
		Msg(message)
	return nil
}

// Fanout delivers every message to each notifier in order and joins their
// errors. A failing notifier does not stop the others.
type Fanout []goVerify.Notifier

var _ goVerify.Notifier = Fanout(nil)

// Notify delivers to every notifier and returns their joined errors.
func (f Fanout) Notify(ctx context.Context, accountID, message string) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, accountID, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
