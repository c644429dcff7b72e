package ports

import (
	"context"

	"github.com/bnema/solana-counter/internal/domain"
)

// AuthorizationRepository persists the authorization between processes. The
// auth token itself is never written here, only a reference into a SecretStore.
type AuthorizationRepository interface {
	Load(ctx context.Context, cluster domain.Cluster) (domain.AuthorizationRecord, error)
	Save(ctx context.Context, record domain.AuthorizationRecord) error
	Delete(ctx context.Context, cluster domain.Cluster) error
}
