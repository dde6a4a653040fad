package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	letterBytes  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberBytes  = "0123456789"
	alphanumeric = letterBytes + numberBytes
)

func GenerateRandomString(length int) string {
	return generateRandom(length, alphanumeric)
}

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

// GenerateOTP returns a numeric one-time password of the configured length.
func GenerateOTP() string {
	return GenerateRandomNumericString(OTPLength)
}

// GenerateTransactionReference builds a unique reference for a wallet
// transaction, e.g. TXN-20260827-4F7K2B9Q.
func GenerateTransactionReference() string {
	return fmt.Sprintf("%s-%s-%s",
		TxnReferencePrefix,
		time.Now().Format("20060102"),
		strings.ToUpper(GenerateRandomString(8)))
}
