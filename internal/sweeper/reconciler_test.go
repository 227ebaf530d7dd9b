package sweeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/mirror"
	"github.com/teocoin/settlement-engine/internal/mocks"
	"github.com/teocoin/settlement-engine/internal/store/schema"
	"github.com/teocoin/settlement-engine/internal/sweeper"
)

var (
	pending   = string(domain.ChainSubmissionPending)
	submitted = string(domain.ChainSubmissionSubmitted)
)

type reconcilerMocks struct {
	ctrl    *gomock.Controller
	lister  *mocks.MockSubmissionLister
	mirror  *mocks.MockMirrorService
	clock   *testClock
	sweeper sweeper.Sweeper
}

func setupReconciler(t *testing.T) *reconcilerMocks {
	ctrl := gomock.NewController(t)
	m := &reconcilerMocks{
		ctrl:   ctrl,
		lister: mocks.NewMockSubmissionLister(ctrl),
		mirror: mocks.NewMockMirrorService(ctrl),
		clock:  newTestClock(ctrl, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)),
	}
	m.sweeper = sweeper.NewReconciler(&sweeper.ReconcilerConfig{
		Interval:             time.Minute,
		BatchSize:            10,
		WorkerPoolSize:       2,
		StaleAfter:           10 * time.Minute,
		RetryInitialInterval: 5 * time.Millisecond,
		RetryMaxElapsedTime:  time.Second,
	}, m.lister, m.mirror, m.clock)
	return m
}

func (m *reconcilerMocks) run(t *testing.T, d time.Duration) {
	t.Helper()
	ctx := context.Background()
	go func() {
		time.Sleep(d)
		_ = m.sweeper.Stop(ctx)
	}()
	require.NoError(t, m.sweeper.Start(ctx))
}

func TestReconciler_Name(t *testing.T) {
	m := setupReconciler(t)
	assert.Equal(t, "chain-submission-reconciler", m.sweeper.Name())
}

func TestReconciler_StopBeforeStart(t *testing.T) {
	m := setupReconciler(t)
	require.NoError(t, m.sweeper.Stop(context.Background()))
}

func TestReconciler_ReconcilesSubmitted(t *testing.T) {
	m := setupReconciler(t)

	m.lister.EXPECT().ListChainSubmissions(gomock.Any(), pending, 10).Return([]schema.ChainSubmission{
		{ID: "w0", UserID: 3, Status: pending, CreatedAt: m.clock.Now().Add(-time.Hour)},
	}, nil).AnyTimes()
	gomock.InOrder(
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return([]schema.ChainSubmission{
			{ID: "w1", Status: submitted},
			{ID: "w2", Status: submitted},
			{ID: "w3", Status: submitted},
		}, nil).Times(1),
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return(nil, nil).AnyTimes(),
	)

	m.mirror.EXPECT().Reconcile(gomock.Any(), "w1").Return(&mirror.Withdrawal{ID: "w1", Status: domain.ChainSubmissionConfirmed}, nil)
	m.mirror.EXPECT().Reconcile(gomock.Any(), "w2").Return(&mirror.Withdrawal{ID: "w2", Status: domain.ChainSubmissionFailed}, nil)
	m.mirror.EXPECT().Reconcile(gomock.Any(), "w3").Return(&mirror.Withdrawal{ID: "w3", Status: domain.ChainSubmissionSubmitted}, nil)

	m.run(t, 150*time.Millisecond)
}

func TestReconciler_RetriesWhileChainDown(t *testing.T) {
	m := setupReconciler(t)

	m.lister.EXPECT().ListChainSubmissions(gomock.Any(), pending, 10).Return(nil, nil).AnyTimes()
	gomock.InOrder(
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return([]schema.ChainSubmission{
			{ID: "w1", Status: submitted},
		}, nil).Times(1),
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return(nil, nil).AnyTimes(),
	)

	gomock.InOrder(
		m.mirror.EXPECT().Reconcile(gomock.Any(), "w1").Return(nil, domain.ErrChainDown).Times(2),
		m.mirror.EXPECT().Reconcile(gomock.Any(), "w1").Return(&mirror.Withdrawal{ID: "w1", Status: domain.ChainSubmissionConfirmed}, nil),
	)

	m.run(t, 200*time.Millisecond)
}

func TestReconciler_PermanentErrorNotRetried(t *testing.T) {
	m := setupReconciler(t)

	m.lister.EXPECT().ListChainSubmissions(gomock.Any(), pending, 10).Return(nil, nil).AnyTimes()
	gomock.InOrder(
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return([]schema.ChainSubmission{
			{ID: "w1", Status: submitted},
		}, nil).Times(1),
		m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return(nil, nil).AnyTimes(),
	)
	m.mirror.EXPECT().Reconcile(gomock.Any(), "w1").Return(nil, domain.ErrNotFound).Times(1)

	m.run(t, 150*time.Millisecond)
}

func TestReconciler_ListErrorHandledGracefully(t *testing.T) {
	m := setupReconciler(t)

	m.lister.EXPECT().ListChainSubmissions(gomock.Any(), pending, 10).Return(nil, errors.New("connection refused")).AnyTimes()
	m.lister.EXPECT().ListChainSubmissions(gomock.Any(), submitted, 10).Return(nil, errors.New("connection refused")).AnyTimes()

	m.run(t, 100*time.Millisecond)
}
