package ports

import "github.com/eziosoft/MavlinkStats/internal/domain"

// StateService is the query surface consumed by presentation layers.
type StateService interface {
	Snapshot() domain.Snapshot
	Reset() error
}
