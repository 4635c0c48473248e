package auth

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// generateUsernameBase creates a lowercase alphanumeric base from a user's name.
func generateUsernameBase(name string) string {
	var result []byte
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "user"
	}
	if len(result) > 12 {
		result = result[:12]
	}
	return string(result)
}

// GenerateUsername appends four random digits to the name's base. The users
// table enforces uniqueness; Store.Create retries on collision.
func GenerateUsername(name string) string {
	return fmt.Sprintf("%s%04d", generateUsernameBase(name), rand.IntN(10000))
}
