package domain

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Base64Address is the wire form wallets use for account addresses: the raw
// 32 public-key bytes, standard base64 encoded.
type Base64Address string

type Account struct {
	Address   Base64Address
	Label     string
	PublicKey solana.PublicKey
}

func NewAccount(address Base64Address, label string) (Account, error) {
	raw, err := base64.StdEncoding.DecodeString(string(address))
	if err != nil {
		return Account{}, fmt.Errorf("%w: decode %q: %v", ErrInvalidAddress, address, err)
	}
	if len(raw) != solana.PublicKeyLength {
		return Account{}, fmt.Errorf("%w: %q has %d bytes, want %d", ErrInvalidAddress, address, len(raw), solana.PublicKeyLength)
	}

	return Account{
		Address:   address,
		Label:     label,
		PublicKey: solana.PublicKeyFromBytes(raw),
	}, nil
}

func AccountFromPublicKey(key solana.PublicKey, label string) Account {
	return Account{
		Address:   AddressFromPublicKey(key),
		Label:     label,
		PublicKey: key,
	}
}

func AddressFromPublicKey(key solana.PublicKey) Base64Address {
	return Base64Address(base64.StdEncoding.EncodeToString(key.Bytes()))
}

// DisplayName prefers the wallet-provided label and falls back to the base58 key.
func (a Account) DisplayName() string {
	if a.Label != "" {
		return fmt.Sprintf("%s (%s)", a.Label, a.PublicKey)
	}
	return a.PublicKey.String()
}
