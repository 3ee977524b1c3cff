package idgen

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// Prefix for all generated task IDs.
	Prefix = "tp"
	// IDLength is the number of hex characters after the prefix.
	IDLength = 8
)

// Generate creates a new task ID in the format "tp-xxxxxxxx", taken from
// the leading hex digits of a random UUID.
func Generate() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	hex := strings.ReplaceAll(u.String(), "-", "")
	return fmt.Sprintf("%s-%s", Prefix, hex[:IDLength]), nil
}
