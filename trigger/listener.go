package trigger

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/logger"
	"github.com/rbb-data/cpisync/pipeline"
)

// Response is sent back to requesters that set a reply subject.
type Response struct {
	Report *pipeline.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
	Code   string           `json:"code,omitempty"`
}

// NewResponse builds the reply for a finished run.
func NewResponse(report pipeline.Report, err error) Response {
	if err != nil {
		return Response{Error: err.Error(), Code: string(errors.CodeOf(err))}
	}
	return Response{Report: &report}
}

// Connect opens a NATS connection that keeps reconnecting for the life of
// the process.
func Connect(url string) (*nats.Conn, error) {
	log := logger.ComponentLogger("nats")

	nc, err := nats.Connect(url,
		nats.Name("cpisync"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("Disconnected", logger.FieldError, err.Error())
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infow("Reconnected", logger.FieldURL, c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to NATS at %s", url)
	}
	return nc, nil
}

// Listener fires one run per message on a subject.
type Listener struct {
	runner  *Runner
	subject string
	queue   string
}

// NewListener creates a Listener. With a non-empty queue, several
// instances share the subject and each message reaches one of them.
func NewListener(runner *Runner, subject, queue string) *Listener {
	return &Listener{runner: runner, subject: subject, queue: queue}
}

// Listen subscribes on nc and blocks until ctx is done.
func (l *Listener) Listen(ctx context.Context, nc *nats.Conn) error {
	log := logger.FromContext(ctx, l.runner.logger)

	var sub *nats.Subscription
	var err error
	if l.queue != "" {
		sub, err = nc.QueueSubscribe(l.subject, l.queue, l.Handler(ctx))
	} else {
		sub, err = nc.Subscribe(l.subject, l.Handler(ctx))
	}
	if err != nil {
		return errors.Wrapf(err, "failed to subscribe to %s", l.subject)
	}
	defer sub.Unsubscribe()

	log.Infow("Listening", "subject", l.subject, "queue", l.queue)
	<-ctx.Done()
	log.Infow("Listener stopped")
	return nil
}

// Handler returns the message callback. The message body is not
// interpreted; when the message carries a reply subject the run's
// Response is published to it.
func (l *Listener) Handler(ctx context.Context) nats.MsgHandler {
	return func(msg *nats.Msg) {
		report, err := l.runner.Fire(ctx, "nats")
		if msg.Reply == "" {
			return
		}

		data, merr := json.Marshal(NewResponse(report, err))
		if merr != nil {
			l.runner.logger.Errorw("Failed to encode reply", logger.FieldError, merr.Error())
			return
		}
		if rerr := msg.Respond(data); rerr != nil {
			l.runner.logger.Warnw("Failed to send reply", "reply", msg.Reply, logger.FieldError, rerr.Error())
		}
	}
}
