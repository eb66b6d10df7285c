package model

import "strings"

// Reference addresses a collection or a document by its root-to-leaf segments
// [collection, doc, sub, doc, sub, ...]. An odd segment count is a collection,
// an even count is a document. The zero value addresses nothing.
type Reference struct {
	segments []string
}

// NewReference builds a reference from raw segments, copying them.
func NewReference(segments ...string) Reference {
	return Reference{segments: append([]string(nil), segments...)}
}

// ParseReference splits a slash separated path, ignoring empty segments.
func ParseReference(path string) Reference {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return Reference{segments: segments}
}

// Segments returns a copy of the path segments.
func (r Reference) Segments() []string {
	return append([]string(nil), r.segments...)
}

// Len returns the number of segments.
func (r Reference) Len() int {
	return len(r.segments)
}

// Path joins the segments with "/".
func (r Reference) Path() string {
	return strings.Join(r.segments, "/")
}

func (r Reference) String() string {
	return r.Path()
}

// IsZero reports whether r addresses nothing.
func (r Reference) IsZero() bool {
	return len(r.segments) == 0
}

// IsDocument reports whether r addresses a document.
func (r Reference) IsDocument() bool {
	return len(r.segments) > 0 && len(r.segments)%2 == 0
}

// IsCollection reports whether r addresses a collection.
func (r Reference) IsCollection() bool {
	return len(r.segments)%2 == 1
}

// ID returns the last segment: the document id or the collection name.
func (r Reference) ID() string {
	if len(r.segments) == 0 {
		return ""
	}
	return r.segments[len(r.segments)-1]
}

// Depth returns how many document to sub-collection pairs lie below the root
// collection.
func (r Reference) Depth() int {
	if len(r.segments) == 0 {
		return 0
	}
	return (len(r.segments) - 1) / 2
}

// Parent drops the last segment: a document's collection or a sub-collection's
// owning document.
func (r Reference) Parent() Reference {
	if len(r.segments) == 0 {
		return r
	}
	return Reference{segments: r.segments[:len(r.segments)-1:len(r.segments)-1]}
}

// Child appends one segment.
func (r Reference) Child(segment string) Reference {
	segments := make([]string, len(r.segments), len(r.segments)+1)
	copy(segments, r.segments)
	return Reference{segments: append(segments, segment)}
}

// RelativeTo returns the segments of r below base joined with "/", or the full
// path when base is not a prefix of r.
func (r Reference) RelativeTo(base Reference) string {
	if len(base.segments) > len(r.segments) {
		return r.Path()
	}
	for i, s := range base.segments {
		if r.segments[i] != s {
			return r.Path()
		}
	}
	return strings.Join(r.segments[len(base.segments):], "/")
}
