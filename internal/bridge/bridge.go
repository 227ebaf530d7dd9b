package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	natsprovider "github.com/teocoin/settlement-engine/internal/providers/jetstream"
	"github.com/teocoin/settlement-engine/internal/reward"
)

// DefaultSubject carries review scored events from the course platform
const DefaultSubject = "reviews.scored"

// Config holds the configuration for the review bridge
type Config struct {
	URL             string
	StreamName      string
	ConsumerName    string
	Subject         string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ConnectionName  string
	AckWaitTimeout  time.Duration
	MaxDeliver      int
	WorkerPoolSize  int
	WorkerQueueSize int
}

// Bridge defines the interface for the review bridge
type Bridge interface {
	// Run consumes review scored events until the context is canceled
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	engine reward.Engine
	json   adapter.JSON
	config Config
}

// NewBridge connects to NATS and creates the review bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	engine reward.Engine,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 4
	}

	nc, js, err := natsJS.Connect(cfg.URL, natsprovider.ConnectOptions(natsprovider.Config{
		ConnectionName: cfg.ConnectionName,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
	})...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &bridge{
		nc:     nc,
		js:     js,
		engine: engine,
		json:   jsonAdapter,
		config: cfg,
	}, nil
}

// Run starts the review bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.Info("Starting review bridge",
		zap.String("stream", b.config.StreamName),
		zap.String("consumer", b.config.ConsumerName),
		zap.String("subject", b.config.Subject))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: b.config.Subject,
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.Info("Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	pool := pond.NewPool(b.config.WorkerPoolSize, pond.WithContext(ctx))
	defer pool.StopAndWait()

	queueSize := b.config.WorkerQueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	msgChan := make(chan adapter.Message, queueSize)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down review bridge")
			return ctx.Err()
		case msg := <-msgChan:
			pool.Submit(func() {
				b.handleMessage(ctx, msg)
			})
		}
	}
}

// handleMessage settles one review scored event and acknowledges it
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var deliveries uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		deliveries = metadata.NumDelivered
	}

	var review domain.ScoredReview
	if err := b.json.Unmarshal(msg.Data(), &review); err != nil {
		logger.Error(err, zap.String("message", "Failed to unmarshal review scored event"), zap.String("subject", msg.Subject()))
		b.term(msg)
		return
	}

	logger.Info("Received review scored event",
		zap.Int64("submissionID", review.SubmissionID),
		zap.Int64("reviewerID", int64(review.ReviewerID)),
		zap.Int("score", review.Score),
		zap.Uint64("deliveryCount", deliveries),
	)

	dist, err := b.engine.ObserveScoredReview(ctx, review)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to observe scored review: %w", err),
			zap.Int64("submissionID", review.SubmissionID),
			zap.Uint64("deliveryCount", deliveries))

		// redelivery cannot fix a missing submission or a rejected payload
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadRequest) {
			b.term(msg)
			return
		}
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if dist.Complete {
		logger.Info("Submission rewards settled",
			zap.Int64("submissionID", dist.SubmissionID),
			zap.Bool("passed", dist.Passed),
			zap.Bool("replayed", dist.Replayed))
	}

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

func (b *bridge) term(msg adapter.Message) {
	if err := msg.Term(); err != nil {
		logger.Error(err, zap.String("message", "Failed to terminate message"))
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
