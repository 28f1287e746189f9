package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for the primary records and secondary indices
const (
	ideaRecordPrefix  = "idearec"
	ideaAuthorPrefix  = "idearecaut"
	ideaCreatedPrefix = "idearecdat"
)

// makeIdeaKey generates the primary key for an idea by id.
func makeIdeaKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", ideaRecordPrefix, id))
}

// makeAuthorKey generates a composite key for the author exact-match index.
// Format: prefix:author:id
func makeAuthorKey(author, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", ideaAuthorPrefix, author, id))
}

// makePartialAuthorKey generates the scan prefix for one author's ideas.
func makePartialAuthorKey(author string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", ideaAuthorPrefix, author))
}

// makeCreatedKey generates a composite key for the created-at range index.
// Format: prefix:timestamp:id with the timestamp in BigEndian order so
// lexicographic sort matches chronological order.
func makeCreatedKey(createdAt int64, id string) []byte {
	prefix := ideaCreatedPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialCreatedKey generates a partial key for created-at scans.
func makePartialCreatedKey(createdAt int64) []byte {
	prefix := ideaCreatedPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt))
	return buf
}
