package domain

import (
	"fmt"
	"strings"
)

type Cluster string

const (
	ClusterDevnet      Cluster = "devnet"
	ClusterTestnet     Cluster = "testnet"
	ClusterMainnetBeta Cluster = "mainnet-beta"
	ClusterLocalnet    Cluster = "localnet"
)

func ParseCluster(raw string) (Cluster, error) {
	cluster := Cluster(strings.ToLower(strings.TrimSpace(raw)))
	switch cluster {
	case ClusterDevnet, ClusterTestnet, ClusterMainnetBeta, ClusterLocalnet:
		return cluster, nil
	case "mainnet":
		return ClusterMainnetBeta, nil
	case "localhost":
		return ClusterLocalnet, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedCluster, raw)
	}
}

// AirdropAvailable reports whether the cluster's faucet accepts airdrop requests.
func (c Cluster) AirdropAvailable() bool {
	return c != ClusterMainnetBeta
}
