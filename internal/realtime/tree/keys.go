package tree

import "github.com/google/uuid"

// NewPushKey returns a child key that sorts after every key generated
// before it.
func NewPushKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
