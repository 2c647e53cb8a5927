package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// ContainsStringFold is the case-insensitive variant of ContainsString.
func ContainsStringFold(hay []string, needle string) bool {
	for _, str := range hay {
		if strings.EqualFold(str, needle) {
			return true
		}
	}
	return false
}

// TextToMd5Hash hashes any text into its md5 hex digest, used to derive
// stable cache keys from free text.
func TextToMd5Hash(text string) (string, error) {
	h := md5.New()
	if _, err := h.Write([]byte(text)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
