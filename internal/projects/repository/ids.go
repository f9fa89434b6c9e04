package repository

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newProjectID returns a short shareable id such as "proj-48213-0571".
// The space is about 8.1e8 ids, so Create retries on a unique violation.
func newProjectID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("project id: %w", err)
	}
	n := binary.BigEndian.Uint64(b[:])
	return fmt.Sprintf("proj-%05d-%04d", 10000+n%90000, 1000+(n/90000)%9000), nil
}

// newScreenshotID returns "shot_" and 32 hex digits.
func newScreenshotID() string {
	return "shot_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
