package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%^&*()-_=+"
)

// MinPasswordLength is the shortest password GeneratePassword will produce
const MinPasswordLength = 12

// RandomInt returns a uniform random int in [0, max) from crypto/rand
func RandomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// ShuffleRunes shuffles s in place (Fisher-Yates) using crypto/rand
func ShuffleRunes(s []rune) error {
	for i := len(s) - 1; i > 0; i-- {
		j, err := RandomInt(i + 1)
		if err != nil {
			return err
		}
		s[i], s[j] = s[j], s[i]
	}
	return nil
}

// GeneratePassword returns a random password of the given length containing at least
// one lowercase letter, one uppercase letter, one digit and one symbol.
// Ambiguous characters (l, I, O, 0, 1) are left out.
func GeneratePassword(length int) (string, error) {
	if length < MinPasswordLength {
		return "", fmt.Errorf("password length must be at least %d, got %d", MinPasswordLength, length)
	}

	classes := []string{lowerChars, upperChars, digitChars, symbolChars}
	all := strings.Join(classes, "")

	result := make([]rune, 0, length)
	for _, class := range classes {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		result = append(result, c)
	}
	for len(result) < length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		result = append(result, c)
	}

	if err := ShuffleRunes(result); err != nil {
		return "", err
	}
	return string(result), nil
}

func pick(chars string) (rune, error) {
	i, err := RandomInt(len(chars))
	if err != nil {
		return 0, fmt.Errorf("failed to read random: %w", err)
	}
	return rune(chars[i]), nil
}

// MaskEmail hides most of the local part of an email address for logging.
// "enrico@example.com" becomes "e*****@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}
	local, domain := email[:at], email[at:]
	if len(local) == 1 {
		return "*" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}
