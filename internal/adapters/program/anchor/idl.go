package anchor

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed idl/anchor_counter.json
var counterIDL []byte

type IDL struct {
	Version      string           `json:"version"`
	Name         string           `json:"name"`
	Instructions []IDLInstruction `json:"instructions"`
	Accounts     []IDLAccountDef  `json:"accounts"`
}

type IDLInstruction struct {
	Name     string           `json:"name"`
	Accounts []IDLAccountItem `json:"accounts"`
	Args     []IDLField       `json:"args"`
}

type IDLAccountItem struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

type IDLAccountDef struct {
	Name string        `json:"name"`
	Type IDLStructType `json:"type"`
}

type IDLStructType struct {
	Kind   string     `json:"kind"`
	Fields []IDLField `json:"fields"`
}

type IDLField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func ParseIDL(data []byte) (*IDL, error) {
	var idl IDL
	if err := json.Unmarshal(data, &idl); err != nil {
		return nil, fmt.Errorf("parse idl: %w", err)
	}
	return &idl, nil
}

// CounterIDL returns the bundled interface description of the counter program.
func CounterIDL() (*IDL, error) {
	return ParseIDL(counterIDL)
}

func (i *IDL) Instruction(name string) (IDLInstruction, bool) {
	for _, instruction := range i.Instructions {
		if instruction.Name == name {
			return instruction, true
		}
	}
	return IDLInstruction{}, false
}

func (i *IDL) Account(name string) (IDLAccountDef, bool) {
	for _, account := range i.Accounts {
		if account.Name == name {
			return account, true
		}
	}
	return IDLAccountDef{}, false
}
