package ports

import (
	"context"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
)

type CounterProgram interface {
	ProgramID() solana.PublicKey
	Instruction(method domain.CounterMethod, accounts domain.CounterAccounts) (solana.Instruction, error)
	FetchCounter(ctx context.Context, address solana.PublicKey) (domain.CounterAccount, error)
	DecodeCounter(data []byte) (domain.CounterAccount, error)
}
