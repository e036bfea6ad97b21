package common

import (
	"crypto/sha1"
	"strings"

	"github.com/mr-tron/base58"
)

// DefaultNamePrefixSeparator joins a name prefix to the rest of the name
const DefaultNamePrefixSeparator = "_"

// ShortenName deterministically shortens an object name which is longer than
// maxLength, keeping the configured prefix readable in front of the hash.
func ShortenName(name string, prefix string, maxLength int) string {
	if len(name) <= maxLength {
		return name
	}
	if prefix == "" {
		return truncate(hashName(name), maxLength)
	}
	head := prefix + DefaultNamePrefixSeparator
	remainder := strings.TrimPrefix(name, head)
	return truncate(head+hashName(remainder), maxLength)
}

// BuildObjectName prepends the prefix and shortens the result to fit the array
func BuildObjectName(name string, prefix string, maxLength int) string {
	if prefix != "" {
		name = prefix + DefaultNamePrefixSeparator + name
	}
	return ShortenName(name, prefix, maxLength)
}

func hashName(name string) string {
	sum := sha1.Sum([]byte(name))
	return base58.Encode(sum[:])
}

func truncate(s string, maxLength int) string {
	if maxLength >= 0 && len(s) > maxLength {
		return s[:maxLength]
	}
	return s
}
