package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GenerateBootstrapPassword returns a cryptographically random hex password
// suitable for the one-time admin bootstrap account.
func GenerateBootstrapPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate bootstrap password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword hashes a password with bcrypt for storage on a User record.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bytes), nil
}

// VerifyPassword checks a candidate password against its bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength requires at least 8 characters and 3 of the 4
// character classes (digit, lower, upper, special).
func ValidatePasswordStrength(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	for _, char := range password {
		switch {
		case char >= '0' && char <= '9':
			hasDigit = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case strings.ContainsRune(specialChars, char):
			hasSpecial = true
		}
	}

	criteria := 0
	for _, ok := range []bool{hasDigit, hasLower, hasUpper, hasSpecial} {
		if ok {
			criteria++
		}
	}
	return criteria >= 3
}

var scriptTagPattern = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>|<script[^>]*>`)
var eventHandlerImgPattern = regexp.MustCompile(`(?i)<img[^>]*(?:onerror|onload|onclick|onmouseover)[^>]*>`)
var dangerousTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<iframe[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?i)<object[^>]*>.*?</object>`),
	regexp.MustCompile(`(?i)<embed[^>]*>.*?</embed>`),
	regexp.MustCompile(`(?i)<link[^>]*>`),
	regexp.MustCompile(`(?i)<meta[^>]*>`),
}
var javascriptURLPattern = regexp.MustCompile(`(?i)javascript:`)

// SanitizeInput strips script tags, event-handler attributes, and other
// markup that has no business appearing inside a task's free-text metadata.
func SanitizeInput(input string) string {
	input = scriptTagPattern.ReplaceAllString(input, "")
	input = eventHandlerImgPattern.ReplaceAllString(input, "")
	for _, pattern := range dangerousTagPatterns {
		input = pattern.ReplaceAllString(input, "")
	}
	input = javascriptURLPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}
