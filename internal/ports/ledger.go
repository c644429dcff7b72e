package ports

import (
	"context"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
)

type SubscriptionID uint64

// AccountChangeFunc receives the raw account data of every change notification.
type AccountChangeFunc func(data []byte)

// Ledger is the cluster connection. ctx passed to OnAccountChange bounds the
// subscribe call only; the listener lives until RemoveAccountChangeListener.
type Ledger interface {
	LatestBlockhash(ctx context.Context) (domain.BlockReference, error)
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error)
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
	OnAccountChange(ctx context.Context, account solana.PublicKey, fn AccountChangeFunc) (SubscriptionID, error)
	RemoveAccountChangeListener(id SubscriptionID) error
}

// TransactionSender broadcasts transactions that were signed outside the core.
type TransactionSender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}
