package badger

import (
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/storage"
)

// Key prefix for checkpoint records
const checkpointPrefix = "chkpt:"

// makeCheckpointKey generates a key for a document's checkpoint. The document
// key is hashed so arbitrary citation strings stay out of the key space.
func makeCheckpointKey(documentKey string) []byte {
	id := core.IDFromContent(documentKey)
	encoded := storage.MarshalID(id)
	buf := make([]byte, len(checkpointPrefix)+len(encoded))
	offset := copy(buf, []byte(checkpointPrefix))
	copy(buf[offset:], encoded)
	return buf
}
