package ports

import (
	"context"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
)

type AuthorizeAPI interface {
	Authorize(ctx context.Context, cluster domain.Cluster, identity domain.AppIdentity) (domain.AuthorizationResult, error)
}

type ReauthorizeAPI interface {
	Reauthorize(ctx context.Context, token domain.AuthToken, identity domain.AppIdentity) (domain.AuthorizationResult, error)
}

type DeauthorizeAPI interface {
	Deauthorize(ctx context.Context, token domain.AuthToken) error
}

type SessionAPI interface {
	AuthorizeAPI
	ReauthorizeAPI
}

// Wallet is a live session with the external wallet that holds the keys.
type Wallet interface {
	AuthorizeAPI
	ReauthorizeAPI
	DeauthorizeAPI
	SignAndSendTransactions(ctx context.Context, transactions []*solana.Transaction) ([]solana.Signature, error)
}

// WalletConnector opens one wallet session per user action and closes it when
// fn returns.
type WalletConnector interface {
	Transact(ctx context.Context, fn func(ctx context.Context, wallet Wallet) error) error
}
