package utils

import (
	"crypto/sha256"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// DeriveAESKey derives a 32-byte AES-256 key from arbitrary user input
func DeriveAESKey(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}

// ValidateSecretStrength warns when a configured secret looks too weak to
// protect anything. It never rejects the value.
func ValidateSecretStrength(secret, name string) {
	var issues []string

	if len(secret) < 12 {
		issues = append(issues, "shorter than 12 characters")
	}
	if matched, _ := regexp.MatchString("^[a-z]+$|^[0-9]+$", secret); matched {
		issues = append(issues, "uses a single character class")
	}

	commonPatterns := []string{"123456", "password", "qwerty", "admin", "secret", "changeme"}
	lower := strings.ToLower(secret)
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			issues = append(issues, "contains a common pattern")
			break
		}
	}

	if len(issues) > 0 {
		logrus.Warnf("%s is weak: %s", name, strings.Join(issues, ", "))
	}
}
