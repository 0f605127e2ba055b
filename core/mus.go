package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types the storage layer persists. Hand-written
// against the mus-go primitive serializers; field order is part of the
// on-disk format and must not change without a migration.
var (
	IDMUS            = idMUS{}
	HierarchyPathMUS = hierarchyPathMUS{}
	DocumentMUS      = documentMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type hierarchyPathMUS struct{}

func (hierarchyPathMUS) Marshal(v HierarchyPath, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v.segments), bs)
	for _, segment := range v.segments {
		n += ord.String.Marshal(segment, bs[n:])
	}
	return n
}

func (hierarchyPathMUS) Unmarshal(bs []byte) (v HierarchyPath, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return HierarchyPath{}, n, err
	}
	segments := make([]string, count)
	for i := 0; i < count; i++ {
		var m int
		segments[i], m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return HierarchyPath{}, n, err
		}
	}
	return HierarchyPath{segments: segments}, n, nil
}

func (hierarchyPathMUS) Size(v HierarchyPath) (size int) {
	size = varint.Int.Size(len(v.segments))
	for _, segment := range v.segments {
		size += ord.String.Size(segment)
	}
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Summary, bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += HierarchyPathMUS.Marshal(v.Jurisdiction, bs[n:])
	n += HierarchyPathMUS.Marshal(v.PracticeArea, bs[n:])
	n += marshalTime(v.DecidedAt, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	n += marshalVector(v.SummaryVector, bs[n:])
	n += marshalVector(v.ContentVector, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Summary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Contents, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Jurisdiction, m, err = HierarchyPathMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.PracticeArea, m, err = HierarchyPathMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.DecidedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.SummaryVector, m, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ContentVector, m, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Metadata, m, err = unmarshalStringMap(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Summary)
	size += ord.String.Size(v.Contents)
	size += HierarchyPathMUS.Size(v.Jurisdiction)
	size += HierarchyPathMUS.Size(v.PracticeArea)
	size += 3 * sizeTime()
	size += sizeVector(v.SummaryVector)
	size += sizeVector(v.ContentVector)
	size += sizeStringMap(v.Metadata)
	return size
}

// Timestamps are stored as fixed-width UnixMicro, zero time as 0.

func marshalTime(t time.Time, bs []byte) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return raw.Int64.Marshal(micros, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := raw.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime() int {
	return raw.Int64.Size(0)
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return nil, n, err
	}
	v = make([]float32, count)
	for i := 0; i < count; i++ {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	return varint.Int.Size(len(v)) + len(v)*raw.Float32.Size(0)
}

func marshalStringMap(v map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for k, val := range v {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(val, bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (v map[string]string, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil || count == 0 {
		return nil, n, err
	}
	v = make(map[string]string, count)
	for i := 0; i < count; i++ {
		var key, val string
		var m int
		if key, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + m, err
		}
		n += m
		if val, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + m, err
		}
		n += m
		v[key] = val
	}
	return v, n, nil
}

func sizeStringMap(v map[string]string) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return size
}
