package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	alphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffixLen = 6
)

// Generate returns a level key of the form PREFIX-level-XXXXXX where the
// suffix is six random uppercase base-36 characters. Uniqueness is not
// checked here; callers rely on the store's uniqueness guard.
func Generate(prefix string, level int) (string, error) {
	b := make([]byte, suffixLen)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate level key: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, level, b), nil
}
