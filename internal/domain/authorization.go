package domain

import (
	"fmt"
	"time"
)

// AuthToken is the opaque, revocable credential a wallet issues on authorize.
type AuthToken string

// AppIdentity is what the wallet shows the user when asked for consent.
type AppIdentity struct {
	Name string
	URI  string
	Icon string
}

// AuthorizedAccount is an account as reported by the wallet, before key decoding.
type AuthorizedAccount struct {
	Address Base64Address
	Label   string
}

// AuthorizationResult is the payload of a successful authorize or reauthorize call.
type AuthorizationResult struct {
	Accounts  []AuthorizedAccount
	AuthToken AuthToken
}

type Authorization struct {
	Accounts        []Account
	AuthToken       AuthToken
	SelectedAccount Account
	Cluster         Cluster
	AuthorizedAt    time.Time
}

// NewAuthorization builds the next authorization from a wallet result. The
// previous selection survives when its address is still authorized; otherwise
// the first returned account is selected.
func NewAuthorization(result AuthorizationResult, previous *Account) (Authorization, error) {
	accounts := make([]Account, 0, len(result.Accounts))
	seen := make(map[Base64Address]struct{}, len(result.Accounts))
	for _, authorized := range result.Accounts {
		if _, ok := seen[authorized.Address]; ok {
			continue
		}
		account, err := NewAccount(authorized.Address, authorized.Label)
		if err != nil {
			return Authorization{}, err
		}
		seen[authorized.Address] = struct{}{}
		accounts = append(accounts, account)
	}

	if len(accounts) == 0 {
		return Authorization{}, ErrNoAccounts
	}

	auth := Authorization{
		Accounts:        accounts,
		AuthToken:       result.AuthToken,
		SelectedAccount: accounts[0],
	}
	if previous != nil && auth.HasAccount(previous.Address) {
		auth.SelectedAccount = *previous
	}

	return auth, nil
}

func (a Authorization) HasAccount(address Base64Address) bool {
	_, ok := a.Account(address)
	return ok
}

func (a Authorization) Account(address Base64Address) (Account, bool) {
	for _, account := range a.Accounts {
		if account.Address == address {
			return account, true
		}
	}
	return Account{}, false
}

// WithSelected returns a copy with account selected, or ErrAccountNotAuthorized.
func (a Authorization) WithSelected(account Account) (Authorization, error) {
	if !a.HasAccount(account.Address) {
		return a, fmt.Errorf("%s: %w", account.Address, ErrAccountNotAuthorized)
	}

	next := a
	next.Accounts = append([]Account(nil), a.Accounts...)
	next.SelectedAccount = account
	return next, nil
}

// AuthorizationRecord is the persisted shape of an Authorization. The token is
// referenced, never embedded.
type AuthorizationRecord struct {
	Cluster         Cluster
	Accounts        []AuthorizedAccount
	SelectedAddress Base64Address
	TokenRef        string
	AuthorizedAt    time.Time
}

func (a Authorization) Record(tokenRef string) AuthorizationRecord {
	accounts := make([]AuthorizedAccount, 0, len(a.Accounts))
	for _, account := range a.Accounts {
		accounts = append(accounts, AuthorizedAccount{Address: account.Address, Label: account.Label})
	}

	return AuthorizationRecord{
		Cluster:         a.Cluster,
		Accounts:        accounts,
		SelectedAddress: a.SelectedAccount.Address,
		TokenRef:        tokenRef,
		AuthorizedAt:    a.AuthorizedAt,
	}
}
