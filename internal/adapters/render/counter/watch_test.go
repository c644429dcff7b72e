package counter

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmit struct {
	mu      sync.Mutex
	methods []domain.CounterMethod
	err     error
}

func (r *recordingSubmit) submit(method domain.CounterMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = append(r.methods, method)
	return r.err
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runSubmit executes the batch started by a key press and returns the
// submission result message.
func runSubmit(t *testing.T, cmd tea.Cmd) submitDoneMsg {
	t.Helper()

	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(submitDoneMsg); ok {
			return done
		}
	}
	t.Fatal("batch did not contain a submission")
	return submitDoneMsg{}
}

func TestWatchModelSubmitsOnKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  tea.KeyMsg
		want domain.CounterMethod
	}{
		{key: keyRunes("+"), want: domain.MethodIncrement},
		{key: tea.KeyMsg{Type: tea.KeyUp}, want: domain.MethodIncrement},
		{key: keyRunes("-"), want: domain.MethodDecrement},
		{key: tea.KeyMsg{Type: tea.KeyDown}, want: domain.MethodDecrement},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			t.Parallel()

			rec := &recordingSubmit{}
			m := NewWatchModel(Snapshot{Program: testProgramContext(t)}, rec.submit)

			next, cmd := m.Update(tt.key)
			model := next.(WatchModel)
			assert.True(t, model.Submitting())
			assert.Contains(t, model.View(), "Sending transaction...")

			done := runSubmit(t, cmd)
			next, _ = model.Update(done)
			assert.False(t, next.(WatchModel).Submitting())
			assert.Equal(t, []domain.CounterMethod{tt.want}, rec.methods)
		})
	}
}

func TestWatchModelIgnoresKeysWhileSubmitting(t *testing.T) {
	t.Parallel()

	rec := &recordingSubmit{}
	m := NewWatchModel(Snapshot{Program: testProgramContext(t)}, rec.submit)

	next, first := m.Update(keyRunes("+"))
	next, second := next.Update(keyRunes("-"))
	assert.Nil(t, second)

	runSubmit(t, first)
	assert.Equal(t, []domain.CounterMethod{domain.MethodIncrement}, rec.methods)
	assert.True(t, next.(WatchModel).Submitting())
}

func TestWatchModelSwallowsBusyErrors(t *testing.T) {
	t.Parallel()

	rec := &recordingSubmit{err: domain.ErrSubmissionInProgress}
	m := NewWatchModel(Snapshot{}, rec.submit)

	_, cmd := m.Update(keyRunes("+"))
	assert.NoError(t, runSubmit(t, cmd).err)

	rec.err = errors.New("boom")
	_, cmd = m.Update(keyRunes("+"))
	assert.EqualError(t, runSubmit(t, cmd).err, "boom")
}

func TestWatchModelFollowsCounterAndNotices(t *testing.T) {
	t.Parallel()

	m := NewWatchModel(Snapshot{Program: testProgramContext(t)}, nil)
	assert.Contains(t, m.View(), "Loading...")

	next, _ := m.Update(CounterMsg{Counter: domain.CounterAccount{Count: big.NewInt(1234567890123)}})
	assert.Contains(t, next.View(), "1234567890123")
	assert.NotContains(t, next.View(), "Loading...")

	next, cmd := next.Update(NoticeMsg{Notification: ports.Notification{Level: ports.NotificationSuccess, Message: "Transaction successful! sig"}})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), "Transaction successful! sig")

	next, _ = next.Update(noticeExpiredMsg{id: 1})
	assert.NotContains(t, next.View(), "Transaction successful! sig")
}

func TestWatchModelQuits(t *testing.T) {
	t.Parallel()

	m := NewWatchModel(Snapshot{}, nil)
	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

type recordingSender struct {
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.msgs = append(s.msgs, msg)
}

func TestProgramNotifierSendsNotice(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	NewProgramNotifier(sender).Notify(ports.Notification{Level: ports.NotificationError, Message: "Error: x"})

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, NoticeMsg{Notification: ports.Notification{Level: ports.NotificationError, Message: "Error: x"}}, sender.msgs[0])
}

func TestWatchModelQuitsWhenSubscriptionFails(t *testing.T) {
	t.Parallel()

	model := NewWatchModel(Snapshot{Cluster: domain.ClusterDevnet}, nil)

	updated, cmd := model.Update(WatchFailedMsg{Err: errors.New("connect to ws://localhost: refused")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, updated.View(), "Error: connect to ws://localhost: refused")
}
