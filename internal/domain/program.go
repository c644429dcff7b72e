package domain

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// CounterSeed is the PDA seed the counter program uses for its single counter.
const CounterSeed = "counter"

const (
	// MinFeeBalance is the balance under which a submission first tops up the fee payer.
	MinFeeBalance uint64 = solana.LAMPORTS_PER_SOL / 1000
	// AirdropAmount is requested whenever the fee payer is under MinFeeBalance.
	AirdropAmount uint64 = 2 * MinFeeBalance
)

type ProgramContext struct {
	ProgramID      solana.PublicKey
	CounterAddress solana.PublicKey
	Bump           uint8
}

// DeriveProgramContext computes the counter PDA. It is deterministic and does
// not touch the network.
func DeriveProgramContext(programID solana.PublicKey, seed string) (ProgramContext, error) {
	address, bump, err := solana.FindProgramAddress([][]byte{[]byte(seed)}, programID)
	if err != nil {
		return ProgramContext{}, fmt.Errorf("derive counter address: %w", err)
	}

	return ProgramContext{
		ProgramID:      programID,
		CounterAddress: address,
		Bump:           bump,
	}, nil
}

type CounterMethod string

const (
	MethodIncrement CounterMethod = "increment"
	MethodDecrement CounterMethod = "decrement"
)

func (m CounterMethod) Valid() bool {
	return m == MethodIncrement || m == MethodDecrement
}

// CounterAccounts are the accounts an increment or decrement instruction references.
type CounterAccounts struct {
	Counter solana.PublicKey
	User    solana.PublicKey
}

type CounterAccount struct {
	Count *big.Int
}

func (c CounterAccount) String() string {
	if c.Count == nil {
		return "0"
	}
	return c.Count.String()
}

type BlockReference struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}
