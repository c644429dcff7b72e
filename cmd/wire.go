package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/solana-counter/internal/adapters/ledger/rpcledger"
	"github.com/bnema/solana-counter/internal/adapters/program/anchor"
	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	tomlrepo "github.com/bnema/solana-counter/internal/adapters/repo/toml"
	chainstore "github.com/bnema/solana-counter/internal/adapters/secrets/chain"
	filestore "github.com/bnema/solana-counter/internal/adapters/secrets/file"
	"github.com/bnema/solana-counter/internal/adapters/wallet/bridge"
	"github.com/bnema/solana-counter/internal/adapters/wallet/keypair"
	"github.com/bnema/solana-counter/internal/application"
	"github.com/bnema/solana-counter/internal/config"
	"github.com/bnema/solana-counter/internal/logging"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/sirupsen/logrus"
)

type app struct {
	cfg      config.Config
	log      *logrus.Logger
	ledger   *rpcledger.Ledger
	programs *application.ProgramSupplier
	sessions *application.SessionService
	view     *application.CounterView
	wallets  ports.WalletConnector
	renderer func(counteradapter.Snapshot) (string, error)
}

func wireApp() (*app, error) {
	v, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("wire config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	ledger := rpcledger.New(rpcledger.Config{
		RPCEndpoint: cfg.RPCURL,
		WSEndpoint:  cfg.WSURL,
		Commitment:  cfg.Commitment,
	}, logger)

	program, err := wireProgram(cfg, ledger)
	if err != nil {
		return nil, err
	}

	repo, err := tomlrepo.NewAuthorizationRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire authorization repository: %w", err)
	}

	secretStore, err := wireSecretStore(cfg)
	if err != nil {
		return nil, err
	}

	wallets, err := wireWallet(cfg, ledger, logger)
	if err != nil {
		return nil, err
	}

	programs := application.NewProgramSupplier(program, cfg.CounterSeed)

	return &app{
		cfg:      cfg,
		log:      logger,
		ledger:   ledger,
		programs: programs,
		sessions: application.NewSessionService(
			application.SessionConfig{Cluster: cfg.Cluster, Identity: cfg.Identity},
			repo,
			secretStore,
			ports.SystemClock{},
			logger,
		),
		view:     application.NewCounterView(programs, ledger, logger),
		wallets:  wallets,
		renderer: counteradapter.Render,
	}, nil
}

func wireProgram(cfg config.Config, ledger *rpcledger.Ledger) (*anchor.Program, error) {
	idl, err := anchor.CounterIDL()
	if err != nil {
		return nil, fmt.Errorf("load counter idl: %w", err)
	}

	provider, err := anchor.NewReadOnlyProvider(ledger)
	if err != nil {
		return nil, fmt.Errorf("wire program provider: %w", err)
	}

	program, err := anchor.NewProgram(idl, cfg.ProgramID, provider)
	if err != nil {
		return nil, fmt.Errorf("wire counter program: %w", err)
	}

	return program, nil
}

func wireSecretStore(cfg config.Config) (ports.SecretStore, error) {
	if cfg.SecretsBackend == config.SecretsFile {
		return filestore.NewStore(cfg.SecretsDir), nil
	}

	store, err := chainstore.NewPassFirstWithFileFallback(cfg.SecretsPassPrefix, cfg.SecretsDir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}
	return store, nil
}

func wireWallet(cfg config.Config, ledger *rpcledger.Ledger, logger logrus.FieldLogger) (ports.WalletConnector, error) {
	switch cfg.Wallet {
	case config.WalletKeypair:
		return keypair.NewConnector(cfg.KeypairPath, ledger), nil
	case config.WalletBridge:
		return bridge.NewConnector(cfg.BridgeURL, logger), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnsupportedWallet, cfg.Wallet)
	}
}

// newControl builds the submission pipeline around the given notifier, which
// differs between one-shot commands and the interactive screen.
func (a *app) newControl(notifier ports.Notifier) *application.CounterControl {
	return application.NewCounterControl(
		application.ControlConfig{Airdrop: a.cfg.Airdrop},
		a.sessions,
		a.programs,
		a.ledger,
		a.wallets,
		notifier,
		a.log,
	)
}

func (a *app) close() {
	if err := a.ledger.Close(); err != nil {
		a.log.WithError(err).Debug("close ledger")
	}
}
