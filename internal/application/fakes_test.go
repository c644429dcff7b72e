package application

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func newAuthorizedAccount(t *testing.T, label string) domain.AuthorizedAccount {
	t.Helper()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return domain.AuthorizedAccount{Address: domain.AddressFromPublicKey(key.PublicKey()), Label: label}
}

func mustAccount(t *testing.T, authorized domain.AuthorizedAccount) domain.Account {
	t.Helper()

	account, err := domain.NewAccount(authorized.Address, authorized.Label)
	require.NoError(t, err)
	return account
}

// eventLog records the order in which the fakes are called. A nil log
// records nothing.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeWallet struct {
	mu     sync.Mutex
	events *eventLog

	accounts []domain.AuthorizedAccount
	issued   int

	authorizeCalls    int
	reauthorizeTokens []domain.AuthToken
	deauthorizeTokens []domain.AuthToken
	deauthorizeErr    error
	authorizeErr      error

	sendStarted chan struct{}
	sendRelease chan struct{}
	sendCalls   int
	sent        []*solana.Transaction
	sendErr     error
}

var _ ports.Wallet = (*fakeWallet)(nil)

func (w *fakeWallet) nextResult() domain.AuthorizationResult {
	w.issued++
	return domain.AuthorizationResult{
		Accounts:  append([]domain.AuthorizedAccount(nil), w.accounts...),
		AuthToken: domain.AuthToken(fmt.Sprintf("token-%d", w.issued)),
	}
}

func (w *fakeWallet) Authorize(_ context.Context, _ domain.Cluster, _ domain.AppIdentity) (domain.AuthorizationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.events.record("authorize")
	w.authorizeCalls++
	if w.authorizeErr != nil {
		return domain.AuthorizationResult{}, w.authorizeErr
	}
	return w.nextResult(), nil
}

func (w *fakeWallet) Reauthorize(_ context.Context, token domain.AuthToken, _ domain.AppIdentity) (domain.AuthorizationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.events.record("reauthorize")
	w.reauthorizeTokens = append(w.reauthorizeTokens, token)
	return w.nextResult(), nil
}

func (w *fakeWallet) Deauthorize(_ context.Context, token domain.AuthToken) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.deauthorizeTokens = append(w.deauthorizeTokens, token)
	return w.deauthorizeErr
}

func (w *fakeWallet) SignAndSendTransactions(ctx context.Context, transactions []*solana.Transaction) ([]solana.Signature, error) {
	w.mu.Lock()
	w.events.record("sign_and_send")
	w.sendCalls++
	w.sent = append(w.sent, transactions...)
	started, release, sendErr := w.sendStarted, w.sendRelease, w.sendErr
	w.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if sendErr != nil {
		return nil, sendErr
	}

	return []solana.Signature{{1, 2, 3}}, nil
}

func (w *fakeWallet) calls() (authorize int, reauthorize []domain.AuthToken, send int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.authorizeCalls, append([]domain.AuthToken(nil), w.reauthorizeTokens...), w.sendCalls
}

type fakeConnector struct {
	wallet *fakeWallet
}

func (c fakeConnector) Transact(ctx context.Context, fn func(ctx context.Context, wallet ports.Wallet) error) error {
	return fn(ctx, c.wallet)
}

type fakeLedger struct {
	mu     sync.Mutex
	events *eventLog

	balance        uint64
	balanceErr     error
	airdropErr     error
	airdrops       []uint64
	blockhash      solana.Hash
	data           []byte
	dataErr        error
	listeners      map[ports.SubscriptionID]ports.AccountChangeFunc
	nextID         ports.SubscriptionID
	removed        []ports.SubscriptionID
	subscribeCalls int
}

var _ ports.Ledger = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balance:   solana.LAMPORTS_PER_SOL,
		blockhash: solana.Hash{9, 9, 9},
		listeners: map[ports.SubscriptionID]ports.AccountChangeFunc{},
	}
}

func (l *fakeLedger) LatestBlockhash(context.Context) (domain.BlockReference, error) {
	l.events.record("blockhash")
	return domain.BlockReference{Blockhash: l.blockhash, LastValidBlockHeight: 100}, nil
}

func (l *fakeLedger) Balance(context.Context, solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events.record("balance")
	return l.balance, l.balanceErr
}

func (l *fakeLedger) RequestAirdrop(_ context.Context, _ solana.PublicKey, lamports uint64) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events.record("airdrop")
	l.airdrops = append(l.airdrops, lamports)
	return solana.Signature{}, l.airdropErr
}

func (l *fakeLedger) AccountData(context.Context, solana.PublicKey) ([]byte, error) {
	return l.data, l.dataErr
}

func (l *fakeLedger) OnAccountChange(_ context.Context, _ solana.PublicKey, fn ports.AccountChangeFunc) (ports.SubscriptionID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.subscribeCalls++
	l.nextID++
	l.listeners[l.nextID] = fn
	return l.nextID, nil
}

func (l *fakeLedger) RemoveAccountChangeListener(id ports.SubscriptionID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.listeners[id]; !ok {
		return errors.New("unknown subscription")
	}
	delete(l.listeners, id)
	l.removed = append(l.removed, id)
	return nil
}

func (l *fakeLedger) emit(data []byte) {
	l.mu.Lock()
	listeners := make([]ports.AccountChangeFunc, 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(data)
	}
}

// fakeProgram encodes the counter as a single byte so decode failures are easy
// to produce.
type fakeProgram struct {
	events   *eventLog
	id       solana.PublicKey
	fetch    domain.CounterAccount
	fetchErr error
}

var _ ports.CounterProgram = (*fakeProgram)(nil)

var errBadCounterData = errors.New("bad counter data")

func (p *fakeProgram) ProgramID() solana.PublicKey {
	return p.id
}

func (p *fakeProgram) Instruction(method domain.CounterMethod, accounts domain.CounterAccounts) (solana.Instruction, error) {
	p.events.record("instruction")
	return solana.NewInstruction(p.id, solana.AccountMetaSlice{
		solana.Meta(accounts.Counter).WRITE(),
		solana.Meta(accounts.User).SIGNER(),
	}, []byte(method)), nil
}

func (p *fakeProgram) FetchCounter(context.Context, solana.PublicKey) (domain.CounterAccount, error) {
	return p.fetch, p.fetchErr
}

func (p *fakeProgram) DecodeCounter(data []byte) (domain.CounterAccount, error) {
	if len(data) != 1 {
		return domain.CounterAccount{}, errBadCounterData
	}
	return domain.CounterAccount{Count: big.NewInt(int64(data[0]))}, nil
}

func newTestProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58("ALeaCzuJpZpoCgTxMjJbNjREVqSwuvYFRZUfc151AKHU")
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []ports.Notification
}

func (n *recordingNotifier) Notify(notification ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notification)
}

func (n *recordingNotifier) all() []ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notification(nil), n.items...)
}
