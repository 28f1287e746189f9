package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IdeaMUS is the MUS serializer for Idea. Vectors are encoded as varint
// float32 slices; timestamps as unix microseconds.
var IdeaMUS = ideaMUS{}

type ideaMUS struct{}

func (ideaMUS) Marshal(v Idea, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Author, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += varint.Int64.Marshal(v.CreatedAt, bs[n:])
	n += varint.Int.Marshal(len(v.References), bs[n:])
	for _, ref := range v.References {
		n += ord.String.Marshal(ref, bs[n:])
	}
	n += ord.String.Marshal(v.ContentPreview, bs[n:])
	n += ord.String.Marshal(v.ContentDigest, bs[n:])
	n += varint.Int.Marshal(len(v.Vector), bs[n:])
	for _, val := range v.Vector {
		n += varint.Float32.Marshal(val, bs[n:])
	}
	n += varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (ideaMUS) Unmarshal(bs []byte) (v Idea, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Author, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.References = make([]string, length)
		for i := 0; i < length; i++ {
			v.References[i], n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.ContentPreview, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentDigest, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		v.Vector = make([]float32, length)
		for i := 0; i < length; i++ {
			v.Vector[i], n1, err = varint.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt = time.UnixMicro(micros).UTC()
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (ideaMUS) Size(v Idea) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Author)
	size += ord.String.Size(v.Content)
	size += varint.Int64.Size(v.CreatedAt)
	size += varint.Int.Size(len(v.References))
	for _, ref := range v.References {
		size += ord.String.Size(ref)
	}
	size += ord.String.Size(v.ContentPreview)
	size += ord.String.Size(v.ContentDigest)
	size += varint.Int.Size(len(v.Vector))
	for _, val := range v.Vector {
		size += varint.Float32.Size(val)
	}
	size += varint.Int64.Size(v.InsertedAt.UnixMicro())
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return size
}

func (m ideaMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return
}
