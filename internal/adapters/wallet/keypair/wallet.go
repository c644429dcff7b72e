package keypair

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

const accountLabel = "keypair"

var ErrTokenMismatch = errors.New("auth token was not issued for this keypair")

var (
	_ ports.WalletConnector = (*Connector)(nil)
	_ ports.Wallet          = (*session)(nil)
)

// Connector is a development wallet backed by a solana-keygen JSON file. It
// signs locally and broadcasts through sender.
type Connector struct {
	path   string
	sender ports.TransactionSender
}

func NewConnector(path string, sender ports.TransactionSender) *Connector {
	return &Connector{path: path, sender: sender}
}

func (c *Connector) Transact(ctx context.Context, fn func(ctx context.Context, wallet ports.Wallet) error) error {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(c.path)
	if err != nil {
		return fmt.Errorf("load keypair %s: %w", c.path, err)
	}

	return fn(ctx, &session{key: key, sender: c.sender})
}

type session struct {
	key    solana.PrivateKey
	sender ports.TransactionSender
}

// token is stable per keypair and identity, so reauthorize can verify it
// without local state.
func (s *session) token(identity domain.AppIdentity) domain.AuthToken {
	pub := s.key.PublicKey()
	name := append(pub[:], []byte(identity.Name+"\x00"+identity.URI)...)
	return domain.AuthToken(uuid.NewSHA1(uuid.NameSpaceOID, name).String())
}

func (s *session) result(identity domain.AppIdentity) domain.AuthorizationResult {
	return domain.AuthorizationResult{
		Accounts: []domain.AuthorizedAccount{{
			Address: domain.AddressFromPublicKey(s.key.PublicKey()),
			Label:   accountLabel,
		}},
		AuthToken: s.token(identity),
	}
}

func (s *session) Authorize(_ context.Context, _ domain.Cluster, identity domain.AppIdentity) (domain.AuthorizationResult, error) {
	return s.result(identity), nil
}

func (s *session) Reauthorize(_ context.Context, token domain.AuthToken, identity domain.AppIdentity) (domain.AuthorizationResult, error) {
	if token != s.token(identity) {
		return domain.AuthorizationResult{}, ErrTokenMismatch
	}
	return s.result(identity), nil
}

func (s *session) Deauthorize(context.Context, domain.AuthToken) error {
	return nil
}

func (s *session) SignAndSendTransactions(ctx context.Context, transactions []*solana.Transaction) ([]solana.Signature, error) {
	if s.sender == nil {
		return nil, errors.New("keypair wallet has no transaction sender")
	}

	pub := s.key.PublicKey()
	signatures := make([]solana.Signature, 0, len(transactions))
	for i, tx := range transactions {
		_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(pub) {
				return &s.key
			}
			return nil
		})
		if err != nil {
			return signatures, fmt.Errorf("sign transaction %d: %w", i, err)
		}

		signature, err := s.sender.SendTransaction(ctx, tx)
		if err != nil {
			return signatures, fmt.Errorf("send transaction %d: %w", i, err)
		}
		signatures = append(signatures, signature)
	}

	return signatures, nil
}
