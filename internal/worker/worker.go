package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/config"
	"github.com/aescanero/dago-levelset/internal/plotter"
)

// Worker represents the levelset worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	plotter       *plotter.Plotter
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
}

// ErrNotRunning is returned by Ready while the processing loop is stopped
var ErrNotRunning = errors.New("worker: processing loop not running")

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	p *plotter.Plotter,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		plotter:       p,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// ErrorStream returns the stream failures are published to
func (w *Worker) ErrorStream() string {
	return w.resultStream + ".errors"
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting levelset worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.EnsureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	// Start processing work
	w.running.Store(true)
	w.wg.Add(1)
	go w.processWork()

	w.logger.Info("levelset worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for in-flight work to complete
func (w *Worker) Stop() error {
	w.logger.Info("stopping levelset worker", zap.String("worker_id", w.id))

	// Cancel context to stop work processing
	w.cancel()
	w.wg.Wait()

	w.logger.Info("levelset worker stopped", zap.String("worker_id", w.id))
	return nil
}

// EnsureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) EnsureConsumerGroup() error {
	// Try to create the group
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// Ready reports whether the worker is consuming: its loop is running and
// the consumer group exists on the work stream
func (w *Worker) Ready(ctx context.Context) error {
	if !w.running.Load() {
		return ErrNotRunning
	}
	groups, err := w.redisClient.XInfoGroups(ctx, w.streamKey).Result()
	if err != nil {
		return fmt.Errorf("failed to inspect consumer groups: %w", err)
	}
	for _, g := range groups {
		if g.Name == w.consumerGroup {
			return nil
		}
	}
	return fmt.Errorf("consumer group %s missing on stream %s", w.consumerGroup, w.streamKey)
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer w.wg.Done()
	defer w.running.Store(false)
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			if _, err := w.ProcessOnce(w.ctx); err != nil {
				if w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				// the group or stream was deleted under us
				if strings.HasPrefix(err.Error(), "NOGROUP") {
					if err := w.EnsureConsumerGroup(); err != nil {
						w.logger.Error("failed to recreate consumer group", zap.Error(err))
					}
				}
				time.Sleep(time.Second)
			}
		}
	}
}

// ProcessOnce reads one batch from the stream, blocking up to BLOCK_TIME,
// and handles it. It returns the number of messages handled.
func (w *Worker) ProcessOnce(ctx context.Context) (int, error) {
	streams, err := w.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.consumerGroup,
		Consumer: w.id,
		Streams:  []string{w.streamKey, ">"},
		Count:    1,
		Block:    w.config.BlockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No messages available
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			w.handleMessage(ctx, message)
			n++
		}
	}
	return n, nil
}

// handleMessage handles a single plot request message
func (w *Worker) handleMessage(ctx context.Context, message redis.XMessage) {
	messageID := message.ID
	// results and acks still go out when Stop cancels ctx mid-request
	out := context.WithoutCancel(ctx)
	w.logger.Info("processing plot request",
		zap.String("message_id", messageID),
	)

	// Parse the work request
	request, err := w.parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse plot request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.publishError(out, messageID, "", err)
		w.acknowledgeMessage(out, messageID)
		return
	}

	// Process the plot request
	result, err := w.plotter.Handle(ctx, request)
	if err != nil {
		w.logger.Error("failed to process plot request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
		// Publish error event
		w.publishError(out, messageID, request.ID, err)
	} else if err := w.publishResult(out, messageID, result); err != nil {
		w.logger.Error("failed to publish result",
			zap.String("message_id", messageID),
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
		// the client still gets an answer for this message
		w.publishError(out, messageID, request.ID, err)
	}

	// Acknowledge the message
	w.acknowledgeMessage(out, messageID)
}

// parseRequest parses a plot request from Redis message
func (w *Worker) parseRequest(values map[string]interface{}) (*plotter.Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid 'data' field", plotter.ErrInvalidRequest)
	}

	var request plotter.Request
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal plot request: %w", plotter.ErrInvalidRequest, err)
	}

	return &request, nil
}

// publishResult publishes the plot result
func (w *Worker) publishResult(ctx context.Context, messageID string, result *plotter.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	// Publish to result stream
	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"message_id": messageID,
			"data":       string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published plot result",
		zap.String("request_id", result.ID),
		zap.String("mode", string(result.Mode)),
		zap.Int("frames", len(result.Frames)),
	)

	return nil
}

// ErrorEvent is published to the error stream for a failed request
type ErrorEvent struct {
	ID        string    `json:"id,omitempty"`
	MessageID string    `json:"message_id"`
	Kind      string    `json:"kind"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// publishError publishes an error event
func (w *Worker) publishError(ctx context.Context, messageID, requestID string, err error) {
	errorEvent := ErrorEvent{
		ID:        requestID,
		MessageID: messageID,
		Kind:      plotter.Kind(err),
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	_, publishErr := w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.ErrorStream(),
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
