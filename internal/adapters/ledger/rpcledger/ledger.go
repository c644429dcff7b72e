package rpcledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"
)

var (
	_ ports.Ledger            = (*Ledger)(nil)
	_ ports.TransactionSender = (*Ledger)(nil)
)

var ErrUnknownSubscription = errors.New("unknown subscription")

type Config struct {
	RPCEndpoint string
	WSEndpoint  string
	Commitment  rpc.CommitmentType
	// ResubscribeAttempts bounds reconnection after a dropped websocket.
	ResubscribeAttempts int
	// ResubscribeBackoff is the first delay between attempts; it doubles up to 5s.
	ResubscribeBackoff time.Duration
}

// Ledger talks to a cluster over JSON-RPC and keeps one websocket connection
// for account subscriptions, opened on first use.
type Ledger struct {
	cfg    Config
	client *rpc.Client
	log    logrus.FieldLogger

	mu     sync.Mutex
	ws     *ws.Client
	nextID ports.SubscriptionID
	subs   map[ports.SubscriptionID]*subscription
}

type subscription struct {
	account solana.PublicKey
	client  *ws.Client
	stream  *ws.AccountSubscription
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(cfg Config, log logrus.FieldLogger) *Ledger {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentProcessed
	}
	if cfg.ResubscribeAttempts <= 0 {
		cfg.ResubscribeAttempts = defaultResubscribeAttempts
	}
	if cfg.ResubscribeBackoff <= 0 {
		cfg.ResubscribeBackoff = defaultResubscribeBackoff
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Ledger{
		cfg:    cfg,
		client: rpc.New(cfg.RPCEndpoint),
		log:    log,
		subs:   make(map[ports.SubscriptionID]*subscription),
	}
}

func (l *Ledger) LatestBlockhash(ctx context.Context) (domain.BlockReference, error) {
	out, err := l.client.GetLatestBlockhash(ctx, l.cfg.Commitment)
	if err != nil {
		return domain.BlockReference{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return domain.BlockReference{}, errors.New("get latest blockhash: empty response")
	}

	return domain.BlockReference{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

func (l *Ledger) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := l.client.GetBalance(ctx, account, l.cfg.Commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance of %s: %w", account, err)
	}
	if out == nil {
		return 0, fmt.Errorf("get balance of %s: empty response", account)
	}

	return out.Value, nil
}

func (l *Ledger) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	signature, err := l.client.RequestAirdrop(ctx, account, lamports, l.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("request airdrop for %s: %w", account, err)
	}

	return signature, nil
}

func (l *Ledger) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	out, err := l.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: l.cfg.Commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", account, domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("get account info of %s: %w", account, err)
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, fmt.Errorf("%s: %w", account, domain.ErrAccountNotFound)
	}

	return out.Value.Data.GetBinary(), nil
}

func (l *Ledger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	signature, err := l.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: l.cfg.Commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	return signature, nil
}

// Close ends every subscription and the websocket connection.
func (l *Ledger) Close() error {
	l.mu.Lock()
	ids := make([]ports.SubscriptionID, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := l.RemoveAccountChangeListener(id); err != nil {
			errs = append(errs, err)
		}
	}

	l.mu.Lock()
	if l.ws != nil {
		l.ws.Close()
		l.ws = nil
	}
	l.mu.Unlock()

	return errors.Join(errs...)
}
