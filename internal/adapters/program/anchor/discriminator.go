package anchor

import (
	"crypto/sha256"
	"strings"
	"unicode"
)

const DiscriminatorLength = 8

type Discriminator [DiscriminatorLength]byte

// InstructionDiscriminator is the 8 byte prefix of instruction data.
func InstructionDiscriminator(name string) Discriminator {
	return sighash("global:" + snakeCase(name))
}

// AccountDiscriminator is the 8 byte prefix of account data.
func AccountDiscriminator(name string) Discriminator {
	return sighash("account:" + pascalCase(name))
}

func sighash(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var out Discriminator
	copy(out[:], sum[:DiscriminatorLength])
	return out
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func (d Discriminator) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}
