package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	SessionPathKey    = "session.path"
	sessionFileMode   = 0o600
	sessionDirMode    = 0o700
	sessionConfigDir  = ".solana-counter"
	sessionConfigFile = "session.toml"
	tempFilePattern   = ".session-*.toml.tmp"
)

// AuthorizationRepository stores one authorization record per cluster in a
// TOML file.
type AuthorizationRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AuthorizationRepository = (*AuthorizationRepository)(nil)

func NewAuthorizationRepository(cfg *viper.Viper) (*AuthorizationRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(SessionPathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, sessionConfigDir, sessionConfigFile)
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &AuthorizationRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *AuthorizationRepository) Path() string {
	return r.path
}

func (r *AuthorizationRepository) Load(ctx context.Context, cluster domain.Cluster) (domain.AuthorizationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuthorizationRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.AuthorizationRecord{}, err
	}

	for _, entry := range file.Authorizations {
		if entry.Cluster == string(cluster) {
			return fromSchema(entry), nil
		}
	}

	return domain.AuthorizationRecord{}, domain.ErrAuthorizationNotFound
}

// Save replaces the record of the same cluster.
func (r *AuthorizationRepository) Save(ctx context.Context, record domain.AuthorizationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.Cluster == "" {
		return errors.New("authorization record has no cluster")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(record)
	updated := false
	for i := range file.Authorizations {
		if file.Authorizations[i].Cluster == encoded.Cluster {
			file.Authorizations[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Authorizations = append(file.Authorizations, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *AuthorizationRepository) Delete(ctx context.Context, cluster domain.Cluster) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Authorizations[:0]
	for _, entry := range file.Authorizations {
		if entry.Cluster != string(cluster) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(file.Authorizations) {
		return domain.ErrAuthorizationNotFound
	}
	file.Authorizations = kept

	return r.writeSchema(file)
}

func (r *AuthorizationRepository) readSchema() (sessionFileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := sessionFileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return sessionFileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file sessionFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return sessionFileSchema{}, fmt.Errorf("decode session file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return sessionFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *AuthorizationRepository) writeSchema(file sessionFileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve session path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(record domain.AuthorizationRecord) authorizationSchema {
	accounts := make([]accountSchema, 0, len(record.Accounts))
	for _, account := range record.Accounts {
		accounts = append(accounts, accountSchema{Address: string(account.Address), Label: account.Label})
	}

	return authorizationSchema{
		Cluster:      string(record.Cluster),
		Selected:     string(record.SelectedAddress),
		TokenRef:     record.TokenRef,
		AuthorizedAt: formatTime(record.AuthorizedAt),
		Accounts:     accounts,
	}
}

func fromSchema(entry authorizationSchema) domain.AuthorizationRecord {
	accounts := make([]domain.AuthorizedAccount, 0, len(entry.Accounts))
	for _, account := range entry.Accounts {
		accounts = append(accounts, domain.AuthorizedAccount{
			Address: domain.Base64Address(account.Address),
			Label:   account.Label,
		})
	}

	return domain.AuthorizationRecord{
		Cluster:         domain.Cluster(entry.Cluster),
		Accounts:        accounts,
		SelectedAddress: domain.Base64Address(entry.Selected),
		TokenRef:        entry.TokenRef,
		AuthorizedAt:    parseTime(entry.AuthorizedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
