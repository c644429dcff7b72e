package application

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewFixture(t *testing.T, program *fakeProgram) (*CounterView, *fakeLedger, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	programs := NewProgramSupplier(program, "")
	_, err := programs.Setup()
	require.NoError(t, err)

	ledger := newFakeLedger()
	return NewCounterView(programs, ledger, logger), ledger, hook
}

func TestProgramSupplierIsIdempotent(t *testing.T) {
	t.Parallel()

	programs := NewProgramSupplier(&fakeProgram{id: newTestProgramID()}, domain.CounterSeed)
	_, ok := programs.Resolved()
	assert.False(t, ok)

	first, err := programs.Setup()
	require.NoError(t, err)
	second, err := programs.Setup()
	require.NoError(t, err)

	expected, err := domain.DeriveProgramContext(newTestProgramID(), domain.CounterSeed)
	require.NoError(t, err)
	assert.Equal(t, expected, first.ProgramContext)
	assert.Equal(t, first, second)

	resolved, ok := programs.Resolved()
	require.True(t, ok)
	assert.Equal(t, first.CounterAddress, resolved.CounterAddress)
}

func TestProgramSupplierWithoutProgram(t *testing.T) {
	t.Parallel()

	_, err := NewProgramSupplier(nil, "").Setup()
	require.ErrorIs(t, err, domain.ErrProgramNotReady)
}

func TestCounterViewActivateBeforeSetup(t *testing.T) {
	t.Parallel()

	view := NewCounterView(NewProgramSupplier(&fakeProgram{id: newTestProgramID()}, ""), newFakeLedger(), nil)

	_, err := view.Activate(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrProgramNotReady)
}

func TestCounterViewFetchesThenFollowsChanges(t *testing.T) {
	t.Parallel()

	view, ledger, _ := newViewFixture(t, &fakeProgram{
		id:    newTestProgramID(),
		fetch: domain.CounterAccount{Count: big.NewInt(5)},
	})

	var (
		mu      sync.Mutex
		updates []string
	)
	activation, err := view.Activate(context.Background(), func(counter domain.CounterAccount) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, counter.String())
	})
	require.NoError(t, err)

	current, ok := view.Current()
	require.True(t, ok)
	assert.Equal(t, "5", current.String())

	ledger.emit([]byte{6})
	current, ok = view.Current()
	require.True(t, ok)
	assert.Equal(t, "6", current.String())

	require.NoError(t, activation.Close())
	require.NoError(t, activation.Close())
	assert.Len(t, ledger.removed, 1)

	ledger.emit([]byte{7})
	current, _ = view.Current()
	assert.Equal(t, "6", current.String())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"5", "6"}, updates)
}

func TestCounterViewStaysLoadingWhenInitialFetchFails(t *testing.T) {
	t.Parallel()

	view, ledger, hook := newViewFixture(t, &fakeProgram{
		id:       newTestProgramID(),
		fetchErr: domain.ErrAccountNotFound,
	})

	activation, err := view.Activate(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = activation.Close() }()

	_, ok := view.Current()
	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	ledger.emit([]byte{1})
	current, ok := view.Current()
	require.True(t, ok)
	assert.Equal(t, "1", current.String())
}

func TestCounterViewKeepsValueOnDecodeFailure(t *testing.T) {
	t.Parallel()

	view, ledger, hook := newViewFixture(t, &fakeProgram{
		id:    newTestProgramID(),
		fetch: domain.CounterAccount{Count: big.NewInt(3)},
	})

	activation, err := view.Activate(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = activation.Close() }()

	ledger.emit([]byte{1, 2, 3})

	current, ok := view.Current()
	require.True(t, ok)
	assert.Equal(t, "3", current.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "account decoding error", entry.Message)
	assert.True(t, errors.Is(entry.Data[logrus.ErrorKey].(error), errBadCounterData))

	ledger.emit([]byte{4})
	current, _ = view.Current()
	assert.Equal(t, "4", current.String())
}

func TestCounterViewWatchClosesOnCancel(t *testing.T) {
	t.Parallel()

	view, ledger, _ := newViewFixture(t, &fakeProgram{id: newTestProgramID(), fetch: domain.CounterAccount{Count: big.NewInt(0)}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- view.Watch(ctx, nil) }()

	require.Eventually(t, func() bool {
		ledger.mu.Lock()
		defer ledger.mu.Unlock()
		return ledger.subscribeCalls == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	assert.Empty(t, ledger.listeners)
}
