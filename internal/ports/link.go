package ports

import (
	"context"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

// Link is the upstream telemetry connection.
//
// Connect blocks until the link is usable and only fails when ctx is done.
// Recv never blocks: it returns (nil, nil) when nothing is ready and an error
// once the link is lost, after which Connect must be called again.
type Link interface {
	Connect(ctx context.Context) error
	Recv() (*domain.Message, error)
	Close() error
}
