package mavlink

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/go-viper/mapstructure/v2"

	"github.com/eziosoft/MavlinkStats/internal/domain"
)

const heartbeatType = "HEARTBEAT"

// Classify reduces a decoded message to a domain.Message. It has no side effects.
func Classify(systemID, componentID uint8, m message.Message) domain.Message {
	out := domain.Message{
		Type:   TypeTag(m),
		Origin: domain.Participant{SystemID: systemID, ComponentID: componentID},
		Fields: map[string]any{},
	}

	raw := map[string]any{}
	if err := mapstructure.Decode(m, &raw); err != nil {
		return out
	}
	for k, v := range raw {
		out.Fields[snakeCase(k)] = finite(v)
	}

	var target struct {
		TargetSystem    *uint8
		TargetComponent *uint8
	}
	if err := mapstructure.Decode(raw, &target); err == nil && target.TargetSystem != nil {
		p := domain.Participant{SystemID: *target.TargetSystem}
		if target.TargetComponent != nil {
			p.ComponentID = *target.TargetComponent
		}
		out.Target = &p
	}

	if out.Type == domain.CommandLongType {
		var cmd struct {
			Command         uint32
			Param1          float64
			Param2          float64
			TargetSystem    uint8
			TargetComponent uint8
		}
		if err := mapstructure.Decode(raw, &cmd); err == nil {
			out.Command = &domain.Command{
				ID:              cmd.Command,
				Param1:          cmd.Param1,
				Param2:          cmd.Param2,
				TargetSystem:    cmd.TargetSystem,
				TargetComponent: cmd.TargetComponent,
			}
		}
	}

	return out
}

// finite replaces NaN and infinite floats, which MAVLink uses as "unset"
// markers, with nil so field maps stay JSON-encodable.
func finite(v any) any {
	switch x := v.(type) {
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
		return v
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return v
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
		return v
	}
	if k := rv.Type().Elem().Kind(); k != reflect.Float32 && k != reflect.Float64 {
		return v
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = finite(rv.Index(i).Interface())
	}
	return out
}

// TypeTag returns the MAVLink catalog name of a decoded message,
// e.g. *MessageGlobalPositionInt → GLOBAL_POSITION_INT.
func TypeTag(m message.Message) string {
	if m == nil {
		return ""
	}
	if raw, ok := m.(*message.MessageRaw); ok {
		return fmt.Sprintf("UNKNOWN_%d", raw.ID)
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToUpper(snakeCase(strings.TrimPrefix(t.Name(), "Message")))
}

// snakeCase converts a Go identifier to lower snake_case. Acronym runs stay together.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
