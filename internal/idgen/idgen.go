// Package idgen assigns identifiers to new user records.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces a fresh identifier on each call.
type Generator interface {
	NewID() string
}

// UUID generates random (v4) UUID strings.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// Sequence yields Prefix1, Prefix2, ... Safe for concurrent use.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s%d", s.Prefix, s.n.Add(1))
}
