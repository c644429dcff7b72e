package anchor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("ALeaCzuJpZpoCgTxMjJbNjREVqSwuvYFRZUfc151AKHU")

type stubReader struct {
	data []byte
	err  error
}

func (r stubReader) AccountData(context.Context, solana.PublicKey) ([]byte, error) {
	return r.data, r.err
}

func newTestProgram(t *testing.T, reader AccountReader) *Program {
	t.Helper()

	idl, err := CounterIDL()
	require.NoError(t, err)
	provider, err := NewReadOnlyProvider(reader)
	require.NoError(t, err)
	program, err := NewProgram(idl, testProgramID, provider)
	require.NoError(t, err)
	return program
}

func counterData(count uint64) []byte {
	sum := sha256.Sum256([]byte("account:Counter"))
	data := make([]byte, 16)
	copy(data, sum[:8])
	binary.LittleEndian.PutUint64(data[8:], count)
	return data
}

func TestDiscriminatorsMatchAnchorPreimages(t *testing.T) {
	t.Parallel()

	increment := sha256.Sum256([]byte("global:increment"))
	counter := sha256.Sum256([]byte("account:Counter"))
	snake := sha256.Sum256([]byte("global:set_count"))

	assert.Equal(t, increment[:8], InstructionDiscriminator("increment").Bytes())
	assert.Equal(t, snake[:8], InstructionDiscriminator("setCount").Bytes())
	assert.Equal(t, counter[:8], AccountDiscriminator("counter").Bytes())
	assert.Equal(t, counter[:8], AccountDiscriminator("Counter").Bytes())
}

func TestProgramInstruction(t *testing.T) {
	t.Parallel()

	program := newTestProgram(t, stubReader{})
	counter := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()

	tests := []struct {
		method domain.CounterMethod
	}{
		{method: domain.MethodIncrement},
		{method: domain.MethodDecrement},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			t.Parallel()

			instruction, err := program.Instruction(tt.method, domain.CounterAccounts{Counter: counter, User: user})
			require.NoError(t, err)

			assert.Equal(t, testProgramID, instruction.ProgramID())
			data, err := instruction.Data()
			require.NoError(t, err)
			assert.Equal(t, InstructionDiscriminator(string(tt.method)).Bytes(), data)

			accounts := instruction.Accounts()
			require.Len(t, accounts, 2)
			assert.Equal(t, counter, accounts[0].PublicKey)
			assert.True(t, accounts[0].IsWritable)
			assert.False(t, accounts[0].IsSigner)
			assert.Equal(t, user, accounts[1].PublicKey)
			assert.True(t, accounts[1].IsSigner)
			assert.False(t, accounts[1].IsWritable)
		})
	}
}

func TestProgramInstructionRejectsBadInput(t *testing.T) {
	t.Parallel()

	program := newTestProgram(t, stubReader{})

	_, err := program.Instruction("initialize", domain.CounterAccounts{})
	require.ErrorIs(t, err, domain.ErrUnknownMethod)

	_, err = program.Instruction(domain.MethodIncrement, domain.CounterAccounts{Counter: solana.NewWallet().PublicKey()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `account "user" is not set`)
}

func TestProgramDecodeCounter(t *testing.T) {
	t.Parallel()

	program := newTestProgram(t, stubReader{})

	counter, err := program.DecodeCounter(counterData(42))
	require.NoError(t, err)
	assert.Equal(t, "42", counter.String())

	counter, err = program.DecodeCounter(counterData(^uint64(0)))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", counter.String())

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: counterData(1)[:10]},
		{name: "wrong discriminator", data: append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, counterData(1)[8:]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := program.DecodeCounter(tt.data)
			require.ErrorIs(t, err, domain.ErrCounterDecode)
		})
	}
}

func TestProgramFetchCounter(t *testing.T) {
	t.Parallel()

	program := newTestProgram(t, stubReader{data: counterData(7)})
	counter, err := program.FetchCounter(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "7", counter.String())

	missing := newTestProgram(t, stubReader{err: domain.ErrAccountNotFound})
	_, err = missing.FetchCounter(context.Background(), solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestNewProgramValidatesIDL(t *testing.T) {
	t.Parallel()

	provider, err := NewReadOnlyProvider(stubReader{})
	require.NoError(t, err)

	idl, err := ParseIDL([]byte(`{"name":"other","instructions":[{"name":"increment"}],"accounts":[]}`))
	require.NoError(t, err)

	_, err = NewProgram(idl, testProgramID, provider)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no decrement instruction")

	_, err = ParseIDL([]byte(`{`))
	require.Error(t, err)
}

func TestPlaceholderSignerRefusesToSign(t *testing.T) {
	t.Parallel()

	program := newTestProgram(t, stubReader{})
	signer := program.Provider().Signer

	assert.False(t, signer.PublicKey().IsZero())
	err := signer.SignTransaction(context.Background(), &solana.Transaction{})
	assert.True(t, errors.Is(err, ErrSigningDelegated))
}
