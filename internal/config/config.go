package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

const (
	// ClusterKey selects the Solana cluster: devnet, testnet, mainnet-beta or localnet.
	ClusterKey = "cluster"
	// RPCURLKey overrides the cluster's JSON-RPC endpoint.
	RPCURLKey = "rpc_url"
	// WSURLKey overrides the subscription endpoint. Derived from rpc_url when empty.
	WSURLKey = "ws_url"
	// CommitmentKey is the commitment used for reads and subscriptions.
	CommitmentKey  = "commitment"
	ProgramIDKey   = "program_id"
	CounterSeedKey = "counter_seed"
	// AirdropKey enables the fee top-up before each submission.
	AirdropKey      = "airdrop"
	IdentityNameKey = "identity.name"
	IdentityURIKey  = "identity.uri"
	IdentityIconKey = "identity.icon"
	// WalletKindKey is either "keypair" or "bridge".
	WalletKindKey  = "wallet.kind"
	KeypairPathKey = "wallet.keypair"
	BridgeURLKey   = "wallet.bridge_url"
	LogLevelKey    = "log.level"
	SessionPathKey = "session.path"
	// SecretsBackendKey is "chain" (pass, then files) or "file".
	SecretsBackendKey    = "secrets.backend"
	SecretsDirKey        = "secrets.dir"
	SecretsPassPrefixKey = "secrets.pass_prefix"

	configName = "config"
	configType = "toml"
	configDir  = ".solana-counter"
	envPrefix  = "COUNTER"
)

const (
	DefaultProgramID    = "ALeaCzuJpZpoCgTxMjJbNjREVqSwuvYFRZUfc151AKHU"
	DefaultIdentityName = "Solana Counter Incrementor"
	DefaultIdentityURI  = "https://solanamobile.com"
	DefaultIdentityIcon = "favicon.ico"
	DefaultBridgeURL    = "ws://127.0.0.1:8765"
)

type WalletKind string

const (
	WalletKeypair WalletKind = "keypair"
	WalletBridge  WalletKind = "bridge"
)

type SecretsBackend string

const (
	SecretsChain SecretsBackend = "chain"
	SecretsFile  SecretsBackend = "file"
)

var (
	ErrUnsupportedWallet  = errors.New("unsupported wallet kind")
	ErrUnsupportedBackend = errors.New("unsupported secrets backend")
	ErrInvalidCommitment  = errors.New("invalid commitment")
)

var clusterEndpoints = map[domain.Cluster]string{
	domain.ClusterDevnet:      "https://api.devnet.solana.com",
	domain.ClusterTestnet:     "https://api.testnet.solana.com",
	domain.ClusterMainnetBeta: "https://api.mainnet-beta.solana.com",
	domain.ClusterLocalnet:    "http://127.0.0.1:8899",
}

// Config is the resolved runtime configuration of the counter CLI.
type Config struct {
	Cluster     domain.Cluster
	RPCURL      string
	WSURL       string
	Commitment  rpc.CommitmentType
	ProgramID   solana.PublicKey
	CounterSeed string
	Airdrop     bool
	Identity    domain.AppIdentity

	Wallet      WalletKind
	KeypairPath string
	BridgeURL   string

	LogLevel string

	SessionPath       string
	SecretsBackend    SecretsBackend
	SecretsDir        string
	SecretsPassPrefix string
}

// New returns a viper instance with defaults, the optional config file
// ~/.solana-counter/config.toml and COUNTER_* environment overrides.
func New() (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(ClusterKey, string(domain.ClusterDevnet))
	v.SetDefault(RPCURLKey, "")
	v.SetDefault(WSURLKey, "")
	v.SetDefault(CommitmentKey, string(rpc.CommitmentProcessed))
	v.SetDefault(ProgramIDKey, DefaultProgramID)
	v.SetDefault(CounterSeedKey, domain.CounterSeed)
	v.SetDefault(AirdropKey, true)
	v.SetDefault(IdentityNameKey, DefaultIdentityName)
	v.SetDefault(IdentityURIKey, DefaultIdentityURI)
	v.SetDefault(IdentityIconKey, DefaultIdentityIcon)
	v.SetDefault(WalletKindKey, string(WalletKeypair))
	v.SetDefault(KeypairPathKey, filepath.Join(homeDir, ".config", "solana", "id.json"))
	v.SetDefault(BridgeURLKey, DefaultBridgeURL)
	v.SetDefault(LogLevelKey, "warn")
	v.SetDefault(SessionPathKey, filepath.Join(homeDir, configDir, "session.toml"))
	v.SetDefault(SecretsBackendKey, string(SecretsChain))
	v.SetDefault(SecretsDirKey, filepath.Join(homeDir, configDir, "secrets"))
	v.SetDefault(SecretsPassPrefixKey, "")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return v, nil
}

// Load resolves and validates every setting.
func Load(v *viper.Viper) (Config, error) {
	cluster, err := domain.ParseCluster(v.GetString(ClusterKey))
	if err != nil {
		return Config{}, err
	}

	programID, err := solana.PublicKeyFromBase58(v.GetString(ProgramIDKey))
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ProgramIDKey, err)
	}

	commitment, err := parseCommitment(v.GetString(CommitmentKey))
	if err != nil {
		return Config{}, err
	}

	rpcURL := strings.TrimSpace(v.GetString(RPCURLKey))
	if rpcURL == "" {
		rpcURL = clusterEndpoints[cluster]
	}
	wsURL := strings.TrimSpace(v.GetString(WSURLKey))
	if wsURL == "" {
		wsURL, err = DeriveWSURL(rpcURL)
		if err != nil {
			return Config{}, err
		}
	}

	wallet := WalletKind(strings.ToLower(v.GetString(WalletKindKey)))
	if wallet != WalletKeypair && wallet != WalletBridge {
		return Config{}, fmt.Errorf("%w %q", ErrUnsupportedWallet, v.GetString(WalletKindKey))
	}

	backend := SecretsBackend(strings.ToLower(v.GetString(SecretsBackendKey)))
	if backend != SecretsChain && backend != SecretsFile {
		return Config{}, fmt.Errorf("%w %q", ErrUnsupportedBackend, v.GetString(SecretsBackendKey))
	}

	seed := v.GetString(CounterSeedKey)
	if seed == "" {
		seed = domain.CounterSeed
	}

	return Config{
		Cluster:     cluster,
		RPCURL:      rpcURL,
		WSURL:       wsURL,
		Commitment:  commitment,
		ProgramID:   programID,
		CounterSeed: seed,
		Airdrop:     v.GetBool(AirdropKey) && cluster.AirdropAvailable(),
		Identity: domain.AppIdentity{
			Name: v.GetString(IdentityNameKey),
			URI:  v.GetString(IdentityURIKey),
			Icon: v.GetString(IdentityIconKey),
		},
		Wallet:            wallet,
		KeypairPath:       v.GetString(KeypairPathKey),
		BridgeURL:         v.GetString(BridgeURLKey),
		LogLevel:          v.GetString(LogLevelKey),
		SessionPath:       v.GetString(SessionPathKey),
		SecretsBackend:    backend,
		SecretsDir:        v.GetString(SecretsDirKey),
		SecretsPassPrefix: v.GetString(SecretsPassPrefixKey),
	}, nil
}

// DeriveWSURL maps an RPC endpoint to its websocket twin: http becomes ws,
// https becomes wss, and an explicit port is incremented by one as solana
// validators listen for subscriptions on the next port.
func DeriveWSURL(rpcURL string) (string, error) {
	u, err := url.Parse(rpcURL)
	if err != nil {
		return "", fmt.Errorf("parse rpc url %q: %w", rpcURL, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		return u.String(), nil
	default:
		return "", fmt.Errorf("rpc url %q: unsupported scheme %q", rpcURL, u.Scheme)
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return "", fmt.Errorf("rpc url %q: invalid port: %w", rpcURL, err)
		}
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(n+1))
	}

	return u.String(), nil
}

func parseCommitment(raw string) (rpc.CommitmentType, error) {
	commitment := rpc.CommitmentType(strings.ToLower(strings.TrimSpace(raw)))
	switch commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return commitment, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidCommitment, raw)
	}
}
