package utils

import (
	"math/rand"
	"strings"
	"time"
)

const alphabet = `abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ`
const allowedCharacters = "0123456789" + alphabet
const codeSize = 11

// GetUID return a Unique ID for our resources
func GetUID() string {
	source := rand.NewSource(time.Now().UnixNano())
	r := rand.New(source)

	numberOfCodePoints := len(allowedCharacters)

	var s strings.Builder
	s.Grow(codeSize)

	// Ensure the first character is an uppercase letter from the alphabet
	s.WriteByte(alphabet[r.Intn(26)] - 32)

	for i := 1; i < codeSize; i++ {
		s.WriteByte(allowedCharacters[r.Intn(numberOfCodePoints)])
	}

	return s.String()
}
