package ports

import "github.com/eziosoft/MavlinkStats/internal/domain"

type Sink interface {
	WriteSnapshot(s domain.Snapshot) error
	Name() string
}
