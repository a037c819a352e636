package token

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// ErrDecode is returned for account locators that were not produced by EncodeUID.
var ErrDecode = errors.New("malformed account reference")

var uidEncoding = base64.RawURLEncoding

// EncodeUID returns the URL-safe locator for an account id.
// The locator is not a credential.
func EncodeUID(id uint64) string {
	return uidEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint64, error) {
	if uid == "" {
		return 0, ErrDecode
	}
	raw, err := uidEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrDecode
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrDecode
	}
	// rejects leading zeros, signs and alternate encodings of the same id
	if EncodeUID(id) != uid {
		return 0, ErrDecode
	}
	return id, nil
}
