package task

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mrz1836/faster/internal/constants"
)

// IDGenerator produces task ids.
type IDGenerator func() string

// NewID returns a short lowercase hex id taken from a random v4 UUID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:constants.TaskIDLength]
}
