package storage

import "context"

// Slot is a single named durable value. Load returns nil data and no error
// when nothing has been saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
