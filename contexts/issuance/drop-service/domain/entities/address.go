package entities

import (
	"encoding/hex"
	"strings"

	domainerrors "mintworks/contexts/issuance/drop-service/domain/errors"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Address is a lower-cased, 0x-prefixed 20-byte hex account identifier.
type Address string

// ParseAddress normalizes raw into an Address. The zero address is rejected
// because nothing can be issued or paid to it.
func ParseAddress(raw string) (Address, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if len(value) != 42 || !strings.HasPrefix(value, "0x") {
		return "", domainerrors.ErrInvalidAddress
	}
	if _, err := hex.DecodeString(value[2:]); err != nil {
		return "", domainerrors.ErrInvalidAddress
	}
	if value == zeroAddress {
		return "", domainerrors.ErrInvalidAddress
	}
	return Address(value), nil
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == "" || a == zeroAddress
}

// TokenID identifies one issued title. Ids are allocated from a monotonic counter starting at 1.
type TokenID uint64
