// Package session names one client process so the server can tell a user's
// terminals apart in its logs.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const timestampLayout = "20060102-150405"

// NewID returns "<timestamp>-<6 hex chars>".
func NewID() string {
	return newID(time.Now())
}

func newID(now time.Time) string {
	timestamp := now.Format(timestampLayout)
	randomBytes := make([]byte, 3)
	if _, err := rand.Read(randomBytes); err != nil {
		return timestamp + "-" + now.Format("000000")
	}
	return timestamp + "-" + hex.EncodeToString(randomBytes)
}
