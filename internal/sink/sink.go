package sink

import (
	"context"
	"errors"

	"github.com/Wolfnicos/DevizElite/internal/catalog"
)

//go:generate mockgen -source=sink.go -destination=./mocks/mock_sink.go -package=mocks

var (
	// ErrFilesystem indicates the output could not be created, written or moved into place.
	ErrFilesystem = errors.New("filesystem error")
	// ErrSerialization indicates the records could not be encoded as JSON.
	ErrSerialization = errors.New("serialization error")
)

// Sink publishes a complete record sequence.
type Sink interface {
	Publish(ctx context.Context, products []catalog.Product) error
}
