package domain

import (
	"encoding/base64"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(fill byte) Base64Address {
	raw := make([]byte, solana.PublicKeyLength)
	for i := range raw {
		raw[i] = fill
	}
	return Base64Address(base64.StdEncoding.EncodeToString(raw))
}

func TestNewAccountDecodesPublicKey(t *testing.T) {
	t.Parallel()

	key := solana.MustPublicKeyFromBase58("ALeaCzuJpZpoCgTxMjJbNjREVqSwuvYFRZUfc151AKHU")
	address := AddressFromPublicKey(key)

	account, err := NewAccount(address, "main")
	require.NoError(t, err)
	assert.Equal(t, key, account.PublicKey)
	assert.Equal(t, "main", account.Label)
	assert.Equal(t, AccountFromPublicKey(key, "main"), account)
}

func TestNewAccountRejectsInvalidAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address Base64Address
	}{
		{name: "not base64", address: "***"},
		{name: "too short", address: Base64Address(base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))},
		{name: "too long", address: Base64Address(base64.StdEncoding.EncodeToString(make([]byte, 33)))},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewAccount(tc.address, "")
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestNewAuthorizationDefaultsToFirstAccount(t *testing.T) {
	t.Parallel()

	auth, err := NewAuthorization(AuthorizationResult{
		Accounts:  []AuthorizedAccount{{Address: testAddress(1)}, {Address: testAddress(2)}},
		AuthToken: "token-1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, testAddress(1), auth.SelectedAccount.Address)
	assert.Equal(t, AuthToken("token-1"), auth.AuthToken)
}

func TestNewAuthorizationKeepsPreviousSelection(t *testing.T) {
	t.Parallel()

	previous, err := NewAccount(testAddress(2), "second")
	require.NoError(t, err)

	auth, err := NewAuthorization(AuthorizationResult{
		Accounts: []AuthorizedAccount{{Address: testAddress(3)}, {Address: testAddress(2)}},
	}, &previous)
	require.NoError(t, err)
	assert.Equal(t, previous, auth.SelectedAccount)
}

func TestNewAuthorizationDropsDuplicatesAndRejectsEmpty(t *testing.T) {
	t.Parallel()

	auth, err := NewAuthorization(AuthorizationResult{
		Accounts: []AuthorizedAccount{{Address: testAddress(1), Label: "a"}, {Address: testAddress(1), Label: "b"}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, auth.Accounts, 1)
	assert.Equal(t, "a", auth.Accounts[0].Label)

	_, err = NewAuthorization(AuthorizationResult{}, nil)
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestAuthorizationWithSelected(t *testing.T) {
	t.Parallel()

	auth, err := NewAuthorization(AuthorizationResult{
		Accounts: []AuthorizedAccount{{Address: testAddress(1)}, {Address: testAddress(2)}},
	}, nil)
	require.NoError(t, err)

	second, _ := auth.Account(testAddress(2))
	next, err := auth.WithSelected(second)
	require.NoError(t, err)
	assert.Equal(t, second, next.SelectedAccount)
	assert.Equal(t, testAddress(1), auth.SelectedAccount.Address)

	stranger, err := NewAccount(testAddress(9), "")
	require.NoError(t, err)
	_, err = auth.WithSelected(stranger)
	assert.ErrorIs(t, err, ErrAccountNotAuthorized)
	assert.ErrorContains(t, err, string(testAddress(9)))
}

func TestDeriveProgramContextIsDeterministic(t *testing.T) {
	t.Parallel()

	programID := solana.MustPublicKeyFromBase58("ALeaCzuJpZpoCgTxMjJbNjREVqSwuvYFRZUfc151AKHU")

	first, err := DeriveProgramContext(programID, CounterSeed)
	require.NoError(t, err)
	second, err := DeriveProgramContext(programID, CounterSeed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, programID, first.ProgramID)

	other, err := DeriveProgramContext(programID, "other")
	require.NoError(t, err)
	assert.NotEqual(t, first.CounterAddress, other.CounterAddress)
}

func TestParseCluster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    Cluster
		wantErr bool
	}{
		{raw: "devnet", want: ClusterDevnet},
		{raw: " Testnet ", want: ClusterTestnet},
		{raw: "mainnet", want: ClusterMainnetBeta},
		{raw: "localhost", want: ClusterLocalnet},
		{raw: "moon", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseCluster(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedCluster)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	assert.False(t, ClusterMainnetBeta.AirdropAvailable())
	assert.True(t, ClusterDevnet.AirdropAvailable())
}

func TestCounterAccountString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", CounterAccount{}.String())
	assert.Equal(t, "42", CounterAccount{Count: big.NewInt(42)}.String())
	assert.True(t, MethodIncrement.Valid())
	assert.False(t, CounterMethod("reset").Valid())
	assert.Equal(t, 2*MinFeeBalance, AirdropAmount)
}
