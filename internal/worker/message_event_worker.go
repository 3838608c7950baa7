package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/platform/rabbitmq"
)

// HistoryWarmer reloads a channel's cached message history.
type HistoryWarmer interface {
	WarmHistory(ctx context.Context, channelID string) error
}

// MessageEventWorker consumes message.created events and re-warms the
// history cache of the channel each event names.
type MessageEventWorker struct {
	conn      *amqp.Connection
	warmer    HistoryWarmer
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessageEventWorker(conn *amqp.Connection, warmer HistoryWarmer, queueName string, logger *zap.Logger) *MessageEventWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageEventWorker{
		conn:      conn,
		warmer:    warmer,
		queueName: queueName,
		logger:    logger.Named("message_event_worker"),
	}
}

const (
	minResubscribeDelay = 500 * time.Millisecond
	maxResubscribeDelay = 30 * time.Second
)

func (w *MessageEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, deliveries, err := w.subscribe()
	if err != nil {
		cancel()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(workerCtx, ch, deliveries)
	}()

	w.logger.Info("worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *MessageEventWorker) subscribe() (*amqp.Channel, <-chan amqp.Delivery, error) {
	ch, err := w.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		return nil, nil, err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("consume queue failed: %w", err)
	}
	return ch, deliveries, nil
}

// run consumes until ctx is done. A closed delivery channel on a live
// connection is resubscribed with backoff; a closed connection stops the
// worker.
func (w *MessageEventWorker) run(ctx context.Context, ch *amqp.Channel, deliveries <-chan amqp.Delivery) {
	for {
		w.consume(ctx, deliveries)
		_ = ch.Close()
		if ctx.Err() != nil {
			return
		}

		w.logger.Warn("delivery channel closed")
		var ok bool
		ch, deliveries, ok = w.resubscribe(ctx)
		if !ok {
			return
		}
	}
}

func (w *MessageEventWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.Handle(ctx, d.Body); err != nil {
				w.logger.Warn("handle message event failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *MessageEventWorker) resubscribe(ctx context.Context) (*amqp.Channel, <-chan amqp.Delivery, bool) {
	delay := minResubscribeDelay
	for {
		if w.conn.IsClosed() {
			w.logger.Error("rabbitmq connection closed, worker stopped")
			return nil, nil, false
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, false
		case <-timer.C:
		}

		ch, deliveries, err := w.subscribe()
		if err == nil {
			w.logger.Info("worker resubscribed", zap.String("queue", w.queueName))
			return ch, deliveries, true
		}
		delay = nextBackoff(delay)
		w.logger.Warn("resubscribe failed", zap.Error(err), zap.Duration("retry_in", delay))
	}
}

// nextBackoff doubles d up to maxResubscribeDelay.
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxResubscribeDelay {
		return maxResubscribeDelay
	}
	return d
}

// Handle processes one event body. It is separate from the consume loop so
// the decode and warm path can be exercised without a broker.
func (w *MessageEventWorker) Handle(ctx context.Context, body []byte) error {
	var event model.MessageCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode message event failed: %w", err)
	}
	if event.ChannelID == "" {
		return fmt.Errorf("message event %d has no channel id", event.MessageID)
	}
	if err := w.warmer.WarmHistory(ctx, event.ChannelID); err != nil {
		return fmt.Errorf("warm history for channel %s failed: %w", event.ChannelID, err)
	}
	return nil
}

func (w *MessageEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
