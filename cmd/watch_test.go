package cmd

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	"github.com/bnema/solana-counter/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWatcher struct {
	updates []domain.CounterAccount
	err     error
}

func (w stubWatcher) Watch(_ context.Context, onUpdate func(domain.CounterAccount)) error {
	for _, counter := range w.updates {
		onUpdate(counter)
	}
	return w.err
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func TestFollowCounterReportsActivationFailure(t *testing.T) {
	t.Parallel()

	activationErr := errors.New("subscribe to account: connection refused")
	sender := &recordingSender{}

	err := followCounter(context.Background(), stubWatcher{err: activationErr}, sender)
	require.ErrorIs(t, err, activationErr)

	require.Len(t, sender.msgs, 1)
	failed, ok := sender.msgs[0].(counteradapter.WatchFailedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, activationErr)
}

func TestFollowCounterForwardsUpdates(t *testing.T) {
	t.Parallel()

	counter := domain.CounterAccount{Count: big.NewInt(5)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &recordingSender{}

	// Errors after shutdown are returned but not shown.
	err := followCounter(ctx, stubWatcher{updates: []domain.CounterAccount{counter}, err: errors.New("close")}, sender)
	require.Error(t, err)

	assert.Equal(t, []tea.Msg{counteradapter.CounterMsg{Counter: counter}}, sender.msgs)
}
