package anchor

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	counterAccountName = "counter"
	counterCountField  = "count"
)

var _ ports.CounterProgram = (*Program)(nil)

// Program is a client for the counter program described by an IDL.
type Program struct {
	idl       *IDL
	programID solana.PublicKey
	provider  *Provider

	counterDiscriminator Discriminator
	countType            string
}

func NewProgram(idl *IDL, programID solana.PublicKey, provider *Provider) (*Program, error) {
	if idl == nil {
		return nil, fmt.Errorf("new counter program: missing idl")
	}
	if provider == nil || provider.Connection == nil {
		return nil, fmt.Errorf("new counter program: missing provider connection")
	}

	for _, method := range []domain.CounterMethod{domain.MethodIncrement, domain.MethodDecrement} {
		instruction, ok := idl.Instruction(string(method))
		if !ok {
			return nil, fmt.Errorf("new counter program: idl %s has no %s instruction", idl.Name, method)
		}
		if len(instruction.Args) > 0 {
			return nil, fmt.Errorf("new counter program: %s takes unsupported arguments", method)
		}
	}

	account, ok := idl.Account(counterAccountName)
	if !ok {
		return nil, fmt.Errorf("new counter program: idl %s has no %s account", idl.Name, counterAccountName)
	}
	countType := ""
	for _, field := range account.Type.Fields {
		if field.Name == counterCountField {
			countType = field.Type
		}
	}
	if countType != "u64" && countType != "i64" {
		return nil, fmt.Errorf("new counter program: unsupported %s.%s type %q", counterAccountName, counterCountField, countType)
	}

	return &Program{
		idl:                  idl,
		programID:            programID,
		provider:             provider,
		counterDiscriminator: AccountDiscriminator(account.Name),
		countType:            countType,
	}, nil
}

func (p *Program) ProgramID() solana.PublicKey {
	return p.programID
}

func (p *Program) Provider() *Provider {
	return p.provider
}

// Instruction builds an increment or decrement instruction. Account metas follow
// the IDL order and flags.
func (p *Program) Instruction(method domain.CounterMethod, accounts domain.CounterAccounts) (solana.Instruction, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	definition, ok := p.idl.Instruction(string(method))
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	metas := make(solana.AccountMetaSlice, 0, len(definition.Accounts))
	for _, item := range definition.Accounts {
		var key solana.PublicKey
		switch item.Name {
		case "counter":
			key = accounts.Counter
		case "user":
			key = accounts.User
		default:
			return nil, fmt.Errorf("build %s instruction: unresolved account %q", method, item.Name)
		}
		if key.IsZero() {
			return nil, fmt.Errorf("build %s instruction: account %q is not set", method, item.Name)
		}
		metas = append(metas, solana.NewAccountMeta(key, item.IsMut, item.IsSigner))
	}

	discriminator := InstructionDiscriminator(definition.Name)
	return solana.NewInstruction(p.programID, metas, discriminator.Bytes()), nil
}

// FetchCounter reads and decodes the counter account.
func (p *Program) FetchCounter(ctx context.Context, address solana.PublicKey) (domain.CounterAccount, error) {
	data, err := p.provider.Connection.AccountData(ctx, address)
	if err != nil {
		return domain.CounterAccount{}, fmt.Errorf("fetch counter %s: %w", address, err)
	}

	return p.DecodeCounter(data)
}

// DecodeCounter checks the account discriminator and decodes the count.
func (p *Program) DecodeCounter(data []byte) (domain.CounterAccount, error) {
	if len(data) < DiscriminatorLength {
		return domain.CounterAccount{}, fmt.Errorf("%w: %d bytes", domain.ErrCounterDecode, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorLength], p.counterDiscriminator[:]) {
		return domain.CounterAccount{}, fmt.Errorf("%w: unexpected discriminator %x", domain.ErrCounterDecode, data[:DiscriminatorLength])
	}

	decoder := bin.NewBorshDecoder(data[DiscriminatorLength:])
	count := new(big.Int)
	switch p.countType {
	case "i64":
		value, err := decoder.ReadInt64(binary.LittleEndian)
		if err != nil {
			return domain.CounterAccount{}, fmt.Errorf("%w: %w", domain.ErrCounterDecode, err)
		}
		count.SetInt64(value)
	default:
		value, err := decoder.ReadUint64(binary.LittleEndian)
		if err != nil {
			return domain.CounterAccount{}, fmt.Errorf("%w: %w", domain.ErrCounterDecode, err)
		}
		count.SetUint64(value)
	}

	return domain.CounterAccount{Count: count}, nil
}
