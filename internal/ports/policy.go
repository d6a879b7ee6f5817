package ports

import "time"

type Policy struct {
	IdleSleep       time.Duration `yaml:"idle_sleep"`
	StaleAfter      time.Duration `yaml:"stale_after"`
	Tolerance       float64       `yaml:"tolerance"`
	PublishInterval time.Duration `yaml:"publish_interval"`

	MaxQueueLen int    `yaml:"max_queue_len"`
	OnQueueFull string `yaml:"on_queue_full"` // "block", "drop", "reject"
}
