package core

import (
	"fmt"
	"strings"
)

// PathSeparator separates segments in the textual form of a hierarchy path.
const PathSeparator = "/"

// HierarchyPath is an ordered sequence of taxonomy segments from the root of
// a taxonomy down to some depth. A zero-depth path is valid and represents
// "no constraint". Paths are immutable once built; all derivation methods
// return new values.
type HierarchyPath struct {
	segments []string
}

// ParsePath parses a raw path string like "united_states/texas/austin".
// Each segment is trimmed, lower-cased, and internal whitespace is collapsed
// to underscores, so "United States/Texas" and "united_states/texas" parse to
// equal paths. An entirely empty input yields a valid zero-depth path. A path
// with an empty segment after normalization fails with ErrMalformedPath.
func ParsePath(raw string) (HierarchyPath, error) {
	if strings.TrimSpace(raw) == "" {
		return HierarchyPath{}, nil
	}

	parts := strings.Split(raw, PathSeparator)
	segments := make([]string, len(parts))
	for i, part := range parts {
		segment := normalizeSegment(part)
		if segment == "" {
			return HierarchyPath{}, fmt.Errorf("%w: empty segment at position %d in %q", ErrMalformedPath, i, raw)
		}
		segments[i] = segment
	}

	return HierarchyPath{segments: segments}, nil
}

// ParsePathWithAliases parses a raw path string and rewrites any segment
// found in the alias table to its canonical form. Alias keys are matched
// against normalized segments ("TX" matches key "tx").
func ParsePathWithAliases(raw string, aliases map[string]string) (HierarchyPath, error) {
	path, err := ParsePath(raw)
	if err != nil {
		return HierarchyPath{}, err
	}
	if len(aliases) == 0 {
		return path, nil
	}

	segments := make([]string, len(path.segments))
	for i, segment := range path.segments {
		if canonical, ok := aliases[segment]; ok {
			segments[i] = normalizeSegment(canonical)
		} else {
			segments[i] = segment
		}
	}
	return HierarchyPath{segments: segments}, nil
}

// NewPath builds a path from individual segments, applying the same
// normalization as ParsePath.
func NewPath(segments ...string) (HierarchyPath, error) {
	if len(segments) == 0 {
		return HierarchyPath{}, nil
	}
	normalized := make([]string, len(segments))
	for i, segment := range segments {
		s := normalizeSegment(segment)
		if s == "" {
			return HierarchyPath{}, fmt.Errorf("%w: empty segment at position %d", ErrMalformedPath, i)
		}
		normalized[i] = s
	}
	return HierarchyPath{segments: normalized}, nil
}

// MustParsePath is a ParsePath that panics on error. Intended for tests and
// static configuration.
func MustParsePath(raw string) HierarchyPath {
	path, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return path
}

// normalizeSegment trims, lower-cases, and joins internal whitespace runs
// with underscores.
func normalizeSegment(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, "_")
}

// Depth returns the number of segments in the path.
func (p HierarchyPath) Depth() int {
	return len(p.segments)
}

// IsZero reports whether the path has no segments.
func (p HierarchyPath) IsZero() bool {
	return len(p.segments) == 0
}

// Segment returns the segment at the given zero-based level index.
// Panics if the index is out of range, mirroring slice semantics.
func (p HierarchyPath) Segment(level int) string {
	return p.segments[level]
}

// Segments returns a copy of the path's segments.
func (p HierarchyPath) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the path in its canonical textual form.
// ParsePath(p.String()) always round-trips to an equal path.
func (p HierarchyPath) String() string {
	return strings.Join(p.segments, PathSeparator)
}

// Equal reports segment-wise equality. Segments are already normalized at
// construction time, so plain string comparison suffices.
func (p HierarchyPath) Equal(other HierarchyPath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, segment := range p.segments {
		if segment != other.segments[i] {
			return false
		}
	}
	return true
}

// Parent returns the path truncated by one level. The parent of a zero-depth
// path is the zero-depth path itself.
func (p HierarchyPath) Parent() HierarchyPath {
	if len(p.segments) == 0 {
		return HierarchyPath{}
	}
	return HierarchyPath{segments: p.segments[:len(p.segments)-1]}
}

// Truncate returns the path limited to the given depth. Depths at or beyond
// the current depth return the path unchanged; non-positive depths return the
// zero-depth path.
func (p HierarchyPath) Truncate(depth int) HierarchyPath {
	if depth <= 0 {
		return HierarchyPath{}
	}
	if depth >= len(p.segments) {
		return p
	}
	return HierarchyPath{segments: p.segments[:depth]}
}

// Child returns the path extended by one normalized segment.
func (p HierarchyPath) Child(segment string) (HierarchyPath, error) {
	s := normalizeSegment(segment)
	if s == "" {
		return HierarchyPath{}, fmt.Errorf("%w: empty child segment", ErrMalformedPath)
	}
	segments := make([]string, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = s
	return HierarchyPath{segments: segments}, nil
}

// IsAncestorOf reports whether p is a strict prefix of other.
// A path is never its own ancestor.
func (p HierarchyPath) IsAncestorOf(other HierarchyPath) bool {
	if len(p.segments) >= len(other.segments) {
		return false
	}
	for i, segment := range p.segments {
		if segment != other.segments[i] {
			return false
		}
	}
	return true
}

// IsDescendantOf reports whether other is a strict prefix of p.
func (p HierarchyPath) IsDescendantOf(other HierarchyPath) bool {
	return other.IsAncestorOf(p)
}

// IsSiblingOf reports whether both paths share a parent but differ in their
// last segment. Paths of depth <= 1 have no siblings: two top-level values
// are unrelated roots, not siblings.
func (p HierarchyPath) IsSiblingOf(other HierarchyPath) bool {
	depth := len(p.segments)
	if depth <= 1 || len(other.segments) != depth {
		return false
	}
	if !p.Parent().Equal(other.Parent()) {
		return false
	}
	return p.segments[depth-1] != other.segments[depth-1]
}

// IsCousinOf reports whether both paths share the same top-level segment but
// are otherwise unrelated: not equal, not ancestor/descendant, not siblings.
func (p HierarchyPath) IsCousinOf(other HierarchyPath) bool {
	if len(p.segments) == 0 || len(other.segments) == 0 {
		return false
	}
	if p.segments[0] != other.segments[0] {
		return false
	}
	if p.Equal(other) || p.IsAncestorOf(other) || p.IsDescendantOf(other) || p.IsSiblingOf(other) {
		return false
	}
	return true
}
