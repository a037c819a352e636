package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
	// OTPLength is the number of digits in a one-time code
	OTPLength = 6
)

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomReader               io.Reader = rand.Reader
	cost                                 = DefaultCost
)

// SetCost overrides the bcrypt cost used by HashPassword.
// Values outside bcrypt's accepted range fall back to DefaultCost.
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		c = DefaultCost
	}
	cost = c
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomDigits returns a zero-padded string of n uniformly random decimal digits.
// n outside 1..18 falls back to OTPLength.
func RandomDigits(n int) (string, error) {
	if n <= 0 || n > 18 {
		n = OTPLength
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(randomReader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v.Int64()), nil
}

// GenerateOTP generates a one-time code of OTPLength digits
func GenerateOTP() (string, error) {
	return RandomDigits(OTPLength)
}
