package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/juris/core"
)

// Key prefixes for different data types. Prefixes are chosen so that no
// prefix is a prefix of another, which keeps plain prefix iteration safe.
const (
	documentPrefix  = "jdoc"
	pathIndexPrefix = "jpix"
	dateIndexPrefix = "jdix"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makePathIndexKey generates a composite key for the taxonomy path index.
// A document is indexed once per ancestor depth of its path, so an
// "at-or-under" lookup is a single prefix scan.
// Format: prefix:taxonomy:ancestorPath\x00:id
// The NUL terminator after the path stops "texas" scans from also matching
// "texas2". Normalized segments never contain NUL.
func makePathIndexKey(taxonomy string, ancestor core.HierarchyPath, id core.ID) []byte {
	prefix := makePartialPathIndexKey(taxonomy, ancestor)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialPathIndexKey generates the scan prefix for every document
// indexed at or under the given ancestor path.
func makePartialPathIndexKey(taxonomy string, ancestor core.HierarchyPath) []byte {
	path := ancestor.String()
	buf := make([]byte, 0, len(pathIndexPrefix)+1+len(taxonomy)+1+len(path)+1)
	buf = append(buf, pathIndexPrefix...)
	buf = append(buf, ':')
	buf = append(buf, taxonomy...)
	buf = append(buf, ':')
	buf = append(buf, path...)
	buf = append(buf, 0x00)
	return buf
}

// makeDateIndexKey generates a composite key for the decision-date index.
// Format: prefix:timestamp:id
func makeDateIndexKey(micros int64, id core.ID) []byte {
	prefix := dateIndexPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(micros))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDateIndexKey generates a partial key for date range scans.
func makePartialDateIndexKey(micros int64) []byte {
	prefix := dateIndexPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(micros))
	return buf
}
