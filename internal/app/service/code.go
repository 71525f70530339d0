package service

import (
	"math/big"

	"github.com/google/uuid"
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultCodeLength is used when the configured length is not positive.
const DefaultCodeLength = 7

// generateCode derives a base62 code of length characters from a random UUID.
func generateCode(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}

	out := make([]byte, 0, length)
	base := big.NewInt(int64(len(base62Alphabet)))
	mod := new(big.Int)

	for len(out) < length {
		id := uuid.New()
		n := new(big.Int).SetBytes(id[:])
		for n.Sign() > 0 && len(out) < length {
			n.DivMod(n, base, mod)
			out = append(out, base62Alphabet[mod.Int64()])
		}
	}
	return string(out)
}
