package anchor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrSigningDelegated is returned by the provider signer: every transaction of
// this client is signed by the external wallet, never by the program client.
var ErrSigningDelegated = errors.New("signing is delegated to the wallet")

// AccountReader is the part of the cluster connection the program client needs.
type AccountReader interface {
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Provider pairs a connection with the signer the program client would use.
type Provider struct {
	Connection AccountReader
	Signer     Signer
}

// NewReadOnlyProvider uses a placeholder signer that refuses to sign.
func NewReadOnlyProvider(connection AccountReader) (*Provider, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate placeholder key: %w", err)
	}

	return &Provider{
		Connection: connection,
		Signer:     placeholderSigner{key: key.PublicKey()},
	}, nil
}

type placeholderSigner struct {
	key solana.PublicKey
}

func (s placeholderSigner) PublicKey() solana.PublicKey {
	return s.key
}

func (placeholderSigner) SignTransaction(context.Context, *solana.Transaction) error {
	return ErrSigningDelegated
}
