package service

import (
	"crypto/rand"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	defaultMaxMembers = 10
	minMembers        = 2
	maxMembers        = 100
)

// generateCode draws codeLength characters uniformly from codeAlphabet.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// clampMaxMembers maps an absent value to the default and bounds the rest.
func clampMaxMembers(n int) int {
	if n == 0 {
		n = defaultMaxMembers
	}
	if n < minMembers {
		return minMembers
	}
	if n > maxMembers {
		return maxMembers
	}
	return n
}
