package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "firebase-kit context key " + string(c)
}

const (
	// RequestIDKey carries the per-request id assigned by the HTTP layer.
	RequestIDKey = contextKey("requestID")
	// UserIDKey carries the uid resolved from a verified session.
	UserIDKey = contextKey("userID")
	// CollectionKey carries the document-store collection being accessed.
	CollectionKey = contextKey("collection")
	// ComponentKey names the wrapper handling the call.
	ComponentKey = contextKey("component")
	// OperationKey names the wrapper method handling the call.
	OperationKey = contextKey("operation")
)
