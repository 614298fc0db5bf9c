package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// SetType identifies which limit a change touched.
type SetType string

const (
	SetTypeWarning  SetType = "warning_limit"
	SetTypeCritical SetType = "critical_limit"
)

// Entry records one parameter limit change.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	MachineName   string
	ParameterName string
	SetType       SetType
	PreviousLimit *float64
	NewLimit      *float64
	IP            string
	UserAgent     string
	ChangedAt     time.Time
}

// Logger writes limit change entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "audit-" + hex.EncodeToString(buf)
}
