package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/sirupsen/logrus"
)

type SessionConfig struct {
	Cluster  domain.Cluster
	Identity domain.AppIdentity
}

// SessionService owns the single authorization shared by every wallet session
// of the process. The lock is never held across a wallet call.
type SessionService struct {
	cfg   SessionConfig
	repo  ports.AuthorizationRepository
	store ports.SecretStore
	clock ports.Clock
	log   logrus.FieldLogger

	mu            sync.RWMutex
	authorization *domain.Authorization
}

// NewSessionService builds a session manager. repo and store may both be nil,
// in which case the authorization only lives in memory.
func NewSessionService(cfg SessionConfig, repo ports.AuthorizationRepository, store ports.SecretStore, clock ports.Clock, log logrus.FieldLogger) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if repo == nil || store == nil {
		repo, store = nil, nil
	}

	return &SessionService{
		cfg:   cfg,
		repo:  repo,
		store: store,
		clock: clock,
		log:   log,
	}
}

func TokenRef(cluster domain.Cluster) string {
	return fmt.Sprintf("solana-counter/%s/auth_token", cluster)
}

// AuthorizeSession reauthorizes with the stored token when one exists and
// authorizes from scratch otherwise. It returns the selected account.
func (s *SessionService) AuthorizeSession(ctx context.Context, wallet ports.SessionAPI) (domain.Account, error) {
	var (
		result domain.AuthorizationResult
		err    error
	)

	if current, ok := s.Authorization(); ok && current.AuthToken != "" {
		result, err = wallet.Reauthorize(ctx, current.AuthToken, s.cfg.Identity)
		if err != nil {
			return domain.Account{}, fmt.Errorf("reauthorize wallet: %w", err)
		}
	} else {
		result, err = wallet.Authorize(ctx, s.cfg.Cluster, s.cfg.Identity)
		if err != nil {
			return domain.Account{}, fmt.Errorf("authorize wallet: %w", err)
		}
	}

	next, err := s.apply(result)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.persist(ctx, next); err != nil {
		s.log.WithError(err).Warn("authorization not persisted")
	}

	return next.SelectedAccount, nil
}

// apply swaps in the new authorization, retaining the selection that is current
// when the wallet answered.
func (s *SessionService) apply(result domain.AuthorizationResult) (domain.Authorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous *domain.Account
	if s.authorization != nil {
		selected := s.authorization.SelectedAccount
		previous = &selected
	}

	next, err := domain.NewAuthorization(result, previous)
	if err != nil {
		return domain.Authorization{}, fmt.Errorf("apply authorization result: %w", err)
	}
	next.Cluster = s.cfg.Cluster
	next.AuthorizedAt = s.clock.Now().UTC()

	s.authorization = &next
	return next, nil
}

// DeauthorizeSession revokes the stored token. Local state is cleared even if
// the wallet fails to revoke; that failure is still returned.
func (s *SessionService) DeauthorizeSession(ctx context.Context, wallet ports.DeauthorizeAPI) error {
	current, ok := s.Authorization()
	if !ok || current.AuthToken == "" {
		return nil
	}

	revokeErr := wallet.Deauthorize(ctx, current.AuthToken)

	s.mu.Lock()
	s.authorization = nil
	s.mu.Unlock()

	if err := s.forget(ctx); err != nil {
		revokeErr = errors.Join(revokeErr, err)
	}
	if revokeErr != nil {
		return fmt.Errorf("deauthorize wallet: %w", revokeErr)
	}

	return nil
}

// ChangeAccount selects another account of the current authorization. The
// selection is saved before it takes effect, so on error the session is
// unchanged.
func (s *SessionService) ChangeAccount(ctx context.Context, account domain.Account) error {
	current, ok := s.Authorization()
	if !ok {
		return fmt.Errorf("%s: %w", account.Address, domain.ErrAccountNotAuthorized)
	}
	next, err := current.WithSelected(account)
	if err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, next.Record(TokenRef(next.Cluster))); err != nil {
			return fmt.Errorf("persist account selection: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authorization == nil || s.authorization.AuthToken != current.AuthToken {
		return fmt.Errorf("%s: %w", account.Address, domain.ErrAccountNotAuthorized)
	}
	s.authorization = &next

	return nil
}

// Restore loads a previously persisted authorization. A missing record or a
// missing token leaves the session unauthorized.
func (s *SessionService) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	record, err := s.repo.Load(ctx, s.cfg.Cluster)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorizationNotFound) {
			return nil
		}
		return fmt.Errorf("load authorization: %w", err)
	}

	token, err := s.store.Get(ctx, record.TokenRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			s.log.WithField("cluster", record.Cluster).Warn("stored authorization has no token, ignoring it")
			return nil
		}
		return fmt.Errorf("load auth token: %w", err)
	}

	auth, err := domain.NewAuthorization(domain.AuthorizationResult{
		Accounts:  record.Accounts,
		AuthToken: domain.AuthToken(token),
	}, nil)
	if err != nil {
		return fmt.Errorf("restore authorization: %w", err)
	}
	if selected, ok := auth.Account(record.SelectedAddress); ok {
		auth.SelectedAccount = selected
	}
	auth.Cluster = s.cfg.Cluster
	auth.AuthorizedAt = record.AuthorizedAt

	s.mu.Lock()
	s.authorization = &auth
	s.mu.Unlock()

	return nil
}

func (s *SessionService) Authorization() (domain.Authorization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.authorization == nil {
		return domain.Authorization{}, false
	}
	return *s.authorization, true
}

func (s *SessionService) Accounts() []domain.Account {
	auth, ok := s.Authorization()
	if !ok {
		return nil
	}
	return append([]domain.Account(nil), auth.Accounts...)
}

func (s *SessionService) SelectedAccount() (domain.Account, bool) {
	auth, ok := s.Authorization()
	if !ok {
		return domain.Account{}, false
	}
	return auth.SelectedAccount, true
}

func (s *SessionService) persist(ctx context.Context, auth domain.Authorization) error {
	if s.repo == nil {
		return nil
	}

	ref := TokenRef(auth.Cluster)
	if err := s.store.Put(ctx, ref, string(auth.AuthToken)); err != nil {
		return fmt.Errorf("store auth token: %w", err)
	}

	if err := s.repo.Save(ctx, auth.Record(ref)); err != nil {
		if rollbackErr := s.store.Delete(ctx, ref); rollbackErr != nil {
			return fmt.Errorf("save authorization and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save authorization: %w", err)
	}

	return nil
}

func (s *SessionService) forget(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	var errs []error
	if err := s.repo.Delete(ctx, s.cfg.Cluster); err != nil && !errors.Is(err, domain.ErrAuthorizationNotFound) {
		errs = append(errs, fmt.Errorf("delete authorization: %w", err))
	}
	if err := s.store.Delete(ctx, TokenRef(s.cfg.Cluster)); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		errs = append(errs, fmt.Errorf("delete auth token: %w", err))
	}

	return errors.Join(errs...)
}
