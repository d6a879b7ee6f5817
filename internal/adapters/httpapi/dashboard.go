package httpapi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

type dashboard struct {
	TakenAt        time.Time
	Participants   []domain.Participant
	StreamRequests []domain.StreamRequest
	Rows           []row
	Missing        []string
}

type row struct {
	domain.MessageState
	To     string
	Age    string
	Fields string
}

func newDashboard(s domain.Snapshot) dashboard {
	d := dashboard{
		TakenAt:        s.TakenAt,
		Participants:   s.Participants,
		StreamRequests: s.StreamRequests,
		Missing:        s.Missing,
	}
	for _, m := range s.SortedMessages() {
		to := "-"
		if m.Target != nil {
			to = m.Target.String()
		}
		d.Rows = append(d.Rows, row{
			MessageState: m,
			To:           to,
			Age:          s.TakenAt.Sub(m.LastSeen).Truncate(time.Millisecond).String(),
			Fields:       formatFields(m.Fields),
		})
	}
	return d
}

func formatHz(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", x)
	case *float64:
		if x == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", *x)
	default:
		return "-"
	}
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
