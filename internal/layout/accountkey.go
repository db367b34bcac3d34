package layout

import (
	"fmt"

	"github.com/mr-tron/base58"

	"pyth_index/internal/domain"
)

// AccountKey is a 32-byte account address.
type AccountKey [KeyBytes]byte

// ZeroKey is the all-zero, invalid key.
var ZeroKey AccountKey

// IsValid reports whether any byte of k is non-zero.
func (k AccountKey) IsValid() bool {
	return k != ZeroKey
}

// String returns the base58 form used by Solana tooling.
func (k AccountKey) String() string {
	return base58.Encode(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k AccountKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AccountKey) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseAccountKey decodes a base58 account key. The decoded value must be exactly 32 bytes.
func ParseAccountKey(s string) (AccountKey, error) {
	var k AccountKey
	raw, err := base58.Decode(s)
	if err != nil {
		return k, fmt.Errorf("%w: %q is not base58: %v", domain.ErrInvalidKey, s, err)
	}
	if len(raw) != KeyBytes {
		return k, fmt.Errorf("%w: %q decodes to %d bytes, want %d", domain.ErrInvalidKey, s, len(raw), KeyBytes)
	}
	copy(k[:], raw)
	return k, nil
}

// MustParseAccountKey is ParseAccountKey for constants and tests. It panics on error.
func MustParseAccountKey(s string) AccountKey {
	k, err := ParseAccountKey(s)
	if err != nil {
		panic(err)
	}
	return k
}
