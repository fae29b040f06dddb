package syncing

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/pkg/logger"
	"github.com/gomantics/contribsync/pkg/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Topic carries canonical sync events on the intake bus.
const Topic = syncreq.EventName

const sourceMetadataKey = "source"

// Submitter accepts trigger payloads.
type Submitter interface {
	Submit(ctx context.Context, source syncreq.Source, payload []byte) (syncreq.Request, error)
}

// Intake is the in-process trigger bus. Submit normalizes a trigger and
// publishes the canonical event; a single router handler moves each event
// into the job queue.
type Intake struct {
	l      *zap.Logger
	pubsub *gochannel.GoChannel
	router *message.Router
	queue  Queue
}

func NewIntake(l *zap.Logger, queue Queue) (*Intake, error) {
	l = l.Named("intake")
	wl := logger.NewWatermill(l)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wl)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wl)
	if err != nil {
		return nil, fmt.Errorf("create intake router: %w", err)
	}

	i := &Intake{l: l, pubsub: pubsub, router: router, queue: queue}

	retry := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		Logger:          wl,
	}
	router.AddMiddleware(i.dropAfterRetries, middleware.Recoverer, retry.Middleware)
	router.AddConsumerHandler("sync-intake", Topic, pubsub, i.handle)

	return i, nil
}

// Submit normalizes payload and publishes it. Invalid payloads are
// returned as *syncreq.ValidationError without touching the bus.
func (i *Intake) Submit(_ context.Context, source syncreq.Source, payload []byte) (syncreq.Request, error) {
	req, err := syncreq.Normalize(source, payload)
	if err != nil {
		metrics.RecordIntake("invalid")
		return syncreq.Request{}, err
	}

	msg := message.NewMessage(watermill.NewUUID(), syncreq.MustEncode(req))
	msg.Metadata.Set(sourceMetadataKey, string(syncreq.SourceCanonical))

	if err := i.pubsub.Publish(Topic, msg); err != nil {
		return syncreq.Request{}, fmt.Errorf("publish sync event: %w", err)
	}
	return req, nil
}

// Run blocks until ctx is done or the router is closed.
func (i *Intake) Run(ctx context.Context) error {
	return i.router.Run(ctx)
}

// Running is closed once the handler is subscribed.
func (i *Intake) Running() chan struct{} {
	return i.router.Running()
}

func (i *Intake) Close() error {
	if err := i.router.Close(); err != nil {
		return err
	}
	return i.pubsub.Close()
}

func (i *Intake) handle(msg *message.Message) error {
	source := syncreq.ParseSource(msg.Metadata.Get(sourceMetadataKey))

	req, err := syncreq.Normalize(source, msg.Payload)
	if err != nil {
		i.l.Warn("dropping invalid sync event",
			zap.String("message_uuid", msg.UUID),
			zap.Error(err),
		)
		metrics.RecordIntake("invalid")
		return nil
	}

	queued, err := i.queue.Enqueue(msg.Context(), req)
	if err != nil {
		return fmt.Errorf("enqueue job %s: %w", req.JobID, err)
	}
	if !queued {
		i.l.Debug("sync event already queued", zap.String("job_id", req.JobID))
		metrics.RecordIntake("duplicate")
		return nil
	}

	metrics.RecordIntake("queued")
	return nil
}

// dropAfterRetries acks messages whose handler still fails after retries;
// the in-process bus would otherwise redeliver them forever.
func (i *Intake) dropAfterRetries(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			i.l.Error("dropping sync event after retries",
				zap.String("message_uuid", msg.UUID),
				zap.Error(err),
			)
			metrics.RecordIntake("error")
			return nil, nil
		}
		return out, nil
	}
}

// StartIntake runs the intake router for the lifetime of the app.
func StartIntake(lc fx.Lifecycle, l *zap.Logger, i *Intake) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := i.Run(context.Background()); err != nil {
					l.Error("intake router stopped", zap.Error(err))
				}
			}()
			select {
			case <-i.Running():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		OnStop: func(ctx context.Context) error {
			return i.Close()
		},
	})
}
