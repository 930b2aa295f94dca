package cryptox

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var otpRange = big.NewInt(otpMax - otpMin + 1)

// GenerateOtpCode returns a uniformly random six-digit code in
// [100000, 999999] drawn from crypto/rand.
func GenerateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
