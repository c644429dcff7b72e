package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	_ ports.WalletConnector = (*Connector)(nil)
	_ ports.Wallet          = (*session)(nil)
)

// Connector reaches an external wallet over a websocket bridge. Each Transact
// opens its own connection.
type Connector struct {
	url    string
	dialer *websocket.Dialer
	log    logrus.FieldLogger
}

func NewConnector(url string, log logrus.FieldLogger) *Connector {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Connector{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log,
	}
}

func (c *Connector) Transact(ctx context.Context, fn func(ctx context.Context, wallet ports.Wallet) error) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connect to wallet bridge: %w", err)
	}

	s := &session{conn: conn, log: c.log.WithField("bridge", c.url)}
	defer func() {
		if err := s.close(); err != nil {
			s.log.WithError(err).Debug("close wallet bridge")
		}
	}()

	return fn(ctx, s)
}

type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  logrus.FieldLogger
}

func toIdentity(identity domain.AppIdentity) identityParams {
	return identityParams{Name: identity.Name, URI: identity.URI, Icon: identity.Icon}
}

func (s *session) Authorize(ctx context.Context, cluster domain.Cluster, identity domain.AppIdentity) (domain.AuthorizationResult, error) {
	var out authorizationResult
	err := s.call(ctx, methodAuthorize, authorizeParams{Identity: toIdentity(identity), Cluster: string(cluster)}, &out)
	if err != nil {
		return domain.AuthorizationResult{}, err
	}
	return out.toDomain()
}

func (s *session) Reauthorize(ctx context.Context, token domain.AuthToken, identity domain.AppIdentity) (domain.AuthorizationResult, error) {
	var out authorizationResult
	err := s.call(ctx, methodReauthorize, reauthorizeParams{Identity: toIdentity(identity), AuthToken: string(token)}, &out)
	if err != nil {
		return domain.AuthorizationResult{}, err
	}
	return out.toDomain()
}

func (s *session) Deauthorize(ctx context.Context, token domain.AuthToken) error {
	return s.call(ctx, methodDeauthorize, deauthorizeParams{AuthToken: string(token)}, nil)
}

func (s *session) SignAndSendTransactions(ctx context.Context, transactions []*solana.Transaction) ([]solana.Signature, error) {
	payloads := make([]string, 0, len(transactions))
	for i, tx := range transactions {
		if len(tx.Signatures) == 0 {
			tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
		}
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encode transaction %d: %w", i, err)
		}
		payloads = append(payloads, base64.StdEncoding.EncodeToString(raw))
	}

	var out signAndSendResult
	if err := s.call(ctx, methodSignAndSendTransactions, signAndSendParams{Payloads: payloads}, &out); err != nil {
		return nil, err
	}
	if len(out.Signatures) != len(transactions) {
		return nil, fmt.Errorf("wallet returned %d signatures for %d transactions", len(out.Signatures), len(transactions))
	}

	signatures := make([]solana.Signature, 0, len(out.Signatures))
	for i, encoded := range out.Signatures {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode signature %d: %w", i, err)
		}
		if len(raw) != signatureLength {
			return nil, fmt.Errorf("decode signature %d: got %d bytes", i, len(raw))
		}
		signatures = append(signatures, solana.SignatureFromBytes(raw))
	}

	return signatures, nil
}

func (r authorizationResult) toDomain() (domain.AuthorizationResult, error) {
	if r.AuthToken == "" {
		return domain.AuthorizationResult{}, errors.New("wallet returned an empty auth token")
	}

	accounts := make([]domain.AuthorizedAccount, 0, len(r.Accounts))
	for _, account := range r.Accounts {
		accounts = append(accounts, domain.AuthorizedAccount{
			Address: domain.Base64Address(account.Address),
			Label:   account.Label,
		})
	}

	return domain.AuthorizationResult{Accounts: accounts, AuthToken: domain.AuthToken(r.AuthToken)}, nil
}

// call sends one request and waits for the response with the same id.
// Messages with other ids are skipped.
func (s *session) call(ctx context.Context, method string, params any, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
	}
	_ = s.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	id := uuid.NewString()
	if err := s.conn.WriteJSON(request{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("%s: write request: %w", method, err)
	}

	for {
		var resp response
		if err := s.conn.ReadJSON(&resp); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s: %w", method, ctxErr)
			}
			return fmt.Errorf("%s: read response: %w", method, err)
		}
		if resp.ID != id {
			s.log.WithFields(logrus.Fields{"method": method, "id": resp.ID}).Debug("skipping unrelated bridge message")
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	}
}

func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	writeErr := s.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return errors.Join(writeErr, s.conn.Close())
}
