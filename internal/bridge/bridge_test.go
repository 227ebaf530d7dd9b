package bridge_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/adapter"
	"github.com/teocoin/settlement-engine/internal/bridge"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	mockspkg "github.com/teocoin/settlement-engine/internal/mocks"
	"github.com/teocoin/settlement-engine/internal/reward"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testBridgeMocks contains all the mocks needed for testing the bridge
type testBridgeMocks struct {
	ctrl      *gomock.Controller
	natsJS    *mockspkg.MockNatsJetStream
	natsConn  *mockspkg.MockNatsConn
	jetStream *mockspkg.MockJetStream
	consumer  *mockspkg.MockNatsConsumer
	consume   *mockspkg.MockConsumeContext
	engine    *mockspkg.MockRewardEngine
}

var testConfig = bridge.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "REVIEWS",
	ConsumerName:   "review-bridge",
	MaxReconnects:  10,
	ReconnectWait:  time.Second,
	ConnectionName: "test-review-bridge",
	AckWaitTimeout: 30 * time.Second,
	MaxDeliver:     5,
	WorkerPoolSize: 2,
}

func setupTestBridge(t *testing.T) *testBridgeMocks {
	ctrl := gomock.NewController(t)
	return &testBridgeMocks{
		ctrl:      ctrl,
		natsJS:    mockspkg.NewMockNatsJetStream(ctrl),
		natsConn:  mockspkg.NewMockNatsConn(ctrl),
		jetStream: mockspkg.NewMockJetStream(ctrl),
		consumer:  mockspkg.NewMockNatsConsumer(ctrl),
		consume:   mockspkg.NewMockConsumeContext(ctrl),
		engine:    mockspkg.NewMockRewardEngine(ctrl),
	}
}

func (m *testBridgeMocks) newBridge(t *testing.T) bridge.Bridge {
	t.Helper()
	m.natsJS.EXPECT().
		Connect(testConfig.URL, gomock.Any()).
		Return(m.natsConn, m.jetStream, nil)

	b, err := bridge.NewBridge(testConfig, m.natsJS, m.engine, adapter.NewJSON())
	require.NoError(t, err)
	return b
}

// run starts the bridge and returns the handler the consumer was given
func (m *testBridgeMocks) run(t *testing.T, b bridge.Bridge) (adapter.MessageHandler, context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	m.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "REVIEWS", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, cfg jetstream.ConsumerConfig) (adapter.Consumer, error) {
			assert.Equal(t, bridge.DefaultSubject, cfg.FilterSubject)
			assert.Equal(t, jetstream.AckExplicitPolicy, cfg.AckPolicy)
			assert.Equal(t, 5, cfg.MaxDeliver)
			return m.consumer, nil
		})
	m.consumer.EXPECT().Info(gomock.Any()).Return(&jetstream.ConsumerInfo{Name: "review-bridge"}, nil)

	handlerCh := make(chan adapter.MessageHandler, 1)
	m.consumer.EXPECT().Consume(gomock.Any()).DoAndReturn(func(h adapter.MessageHandler, _ ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
		handlerCh <- h
		return m.consume, nil
	})
	m.consume.EXPECT().Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Run(ctx)
	}()

	select {
	case h := <-handlerCh:
		return h, cancel, errCh
	case <-time.After(time.Second):
		cancel()
		t.Fatal("consumer was never started")
		return nil, nil, nil
	}
}

func (m *testBridgeMocks) message(data string) *mockspkg.MockJetStreamMessage {
	msg := mockspkg.NewMockJetStreamMessage(m.ctrl)
	msg.EXPECT().Data().Return([]byte(data)).AnyTimes()
	msg.EXPECT().Subject().Return(bridge.DefaultSubject).AnyTimes()
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil).AnyTimes()
	return msg
}

func TestBridge_NewBridge_ConnectError(t *testing.T) {
	m := setupTestBridge(t)

	m.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, assert.AnError)

	b, err := bridge.NewBridge(testConfig, m.natsJS, m.engine, adapter.NewJSON())
	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

func TestBridge_Close(t *testing.T) {
	m := setupTestBridge(t)
	b := m.newBridge(t)

	m.natsConn.EXPECT().Close()
	b.Close()
}

func TestBridge_Run_ConsumerError(t *testing.T) {
	m := setupTestBridge(t)
	b := m.newBridge(t)

	m.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), "REVIEWS", gomock.Any()).
		Return(nil, errors.New("stream not found"))

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create/update consumer")
}

func TestBridge_HandleMessages(t *testing.T) {
	m := setupTestBridge(t)
	b := m.newBridge(t)

	var wg sync.WaitGroup
	done := func() { wg.Done() }

	ok := m.message(`{"submission_id":7,"reviewer_id":21,"score":8}`)
	ok.EXPECT().Ack().Do(done).Return(nil)

	garbage := m.message(`{not json`)
	garbage.EXPECT().Term().Do(done).Return(nil)

	missing := m.message(`{"submission_id":404,"reviewer_id":21,"score":8}`)
	missing.EXPECT().Term().Do(done).Return(nil)

	badScore := m.message(`{"submission_id":8,"reviewer_id":21,"score":11}`)
	badScore.EXPECT().Term().Do(done).Return(nil)

	transient := m.message(`{"submission_id":9,"reviewer_id":21,"score":8}`)
	transient.EXPECT().Nak().Do(done).Return(nil)

	m.engine.EXPECT().
		ObserveScoredReview(gomock.Any(), domain.ScoredReview{SubmissionID: 7, ReviewerID: 21, Score: 8}).
		Return(&reward.Distribution{SubmissionID: 7, Complete: true, Passed: true}, nil)
	m.engine.EXPECT().
		ObserveScoredReview(gomock.Any(), domain.ScoredReview{SubmissionID: 404, ReviewerID: 21, Score: 8}).
		Return(nil, domain.ErrNotFound.With("submission_id", 404))
	m.engine.EXPECT().
		ObserveScoredReview(gomock.Any(), domain.ScoredReview{SubmissionID: 8, ReviewerID: 21, Score: 11}).
		Return(nil, domain.ErrBadRequest.Withf("score out of range"))
	m.engine.EXPECT().
		ObserveScoredReview(gomock.Any(), domain.ScoredReview{SubmissionID: 9, ReviewerID: 21, Score: 8}).
		Return(nil, errors.New("serialization failure"))

	handler, cancel, errCh := m.run(t, b)

	msgs := []adapter.Message{ok, garbage, missing, badScore, transient}
	wg.Add(len(msgs))
	for _, msg := range msgs {
		handler(msg)
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not settled")
	}

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
