package interfaces

import (
	"context"
	"eigenkey/internal/models"
)

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

type SchedulerInterface interface {
	Init()
	Stop()
	Roll() error
}

// KeySourceInterface resolves the allow-list of access keys.
type KeySourceInterface interface {
	Name() string
	Keys(ctx context.Context) ([]string, error)
}

type KeyStateStoreInterface interface {
	Load() (models.KeyState, error)
	Save(state models.KeyState) error
	// Probe reports whether the store can currently be written.
	Probe() error
}
