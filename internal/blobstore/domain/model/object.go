// Package model holds the blob store types.
package model

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperrors "firebase-kit/internal/shared/errors"
)

// MaxNameLength is the longest object name Cloud Storage accepts, in bytes.
const MaxNameLength = 1024

// DefaultContentType is stored when an upload names no content type.
const DefaultContentType = "application/octet-stream"

// Object describes a stored blob
type Object struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Updated     time.Time `json:"updated"`
}

// Blob is an object together with its content
type Blob struct {
	Object
	Data []byte `json:"data"`
}

// ValidateName checks an object name. Names are slash-separated like paths
// but may not start with a slash or contain empty, "." or ".." segments.
func ValidateName(name string) error {
	switch {
	case name == "":
		return invalidName("object name is required")
	case len(name) > MaxNameLength:
		return invalidName("object name exceeds 1024 bytes")
	case !utf8.ValidString(name):
		return invalidName("object name must be valid UTF-8")
	case strings.ContainsFunc(name, unicode.IsControl):
		return invalidName("object name contains a control character")
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return invalidName("object name has an empty or relative segment")
		}
	}
	return nil
}

func invalidName(msg string) error {
	return apperrors.NewValidationError(msg).WithCause(apperrors.ErrInvalidPath)
}
