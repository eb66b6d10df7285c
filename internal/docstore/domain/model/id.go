package model

import (
	"strings"

	"github.com/google/uuid"
)

// AutoIDLength matches the length of platform generated document ids.
const AutoIDLength = 20

// NewAutoID returns a random document id of AutoIDLength characters.
func NewAutoID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:AutoIDLength]
}
