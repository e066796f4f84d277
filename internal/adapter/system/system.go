// Package system provides the production Clock and IDSource.
package system

import (
	"time"

	"github.com/google/uuid"
)

// Clock implements ports.Clock using the wall clock.
type Clock struct{}

func (Clock) Now() time.Time { return time.Now().UTC() }

// UUIDSource implements ports.IDSource using random UUIDs.
type UUIDSource struct{}

func (UUIDSource) NewID() string { return uuid.NewString() }
