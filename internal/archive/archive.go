package archive

import (
	"context"
	"encoding/json"
	"time"
)

// Batch is the unit written to long-term storage when a list is trimmed.
// Entries keep their stored JSON form so nothing is lost in translation.
type Batch struct {
	List       string            `json:"list"`
	ArchivedAt time.Time         `json:"archivedAt"`
	Entries    []json.RawMessage `json:"entries"`
}

// Archiver persists activity entries that are about to be trimmed from a
// list. It returns the location of the written batch.
type Archiver interface {
	Archive(ctx context.Context, list string, entries []json.RawMessage) (string, error)
}
