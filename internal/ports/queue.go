package ports

import "github.com/eziosoft/MavlinkStats/internal/domain"

type MessageQueue interface {
	Enqueue(m *domain.Message) bool
	Dequeue() (*domain.Message, bool)
	Len() int
}
