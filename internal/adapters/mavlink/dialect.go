package mavlink

import (
	"strings"

	"github.com/bluenviron/gomavlib/v3/pkg/dialect"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/minimal"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
)

type dialectInfo struct {
	dialect *dialect.Dialect
	// announce builds the heartbeat we send once a link is up.
	announce func() message.Message
}

var dialects = map[string]dialectInfo{
	"ardupilotmega": {
		dialect: ardupilotmega.Dialect,
		announce: func() message.Message {
			return &ardupilotmega.MessageHeartbeat{
				Type:           ardupilotmega.MAV_TYPE_GCS,
				Autopilot:      ardupilotmega.MAV_AUTOPILOT_INVALID,
				MavlinkVersion: 3,
			}
		},
	},
	"common": {
		dialect: common.Dialect,
		announce: func() message.Message {
			return &common.MessageHeartbeat{
				Type:           common.MAV_TYPE_GCS,
				Autopilot:      common.MAV_AUTOPILOT_INVALID,
				MavlinkVersion: 3,
			}
		},
	},
	"minimal": {
		dialect: minimal.Dialect,
		announce: func() message.Message {
			return &minimal.MessageHeartbeat{
				Type:           minimal.MAV_TYPE_GCS,
				Autopilot:      minimal.MAV_AUTOPILOT_INVALID,
				MavlinkVersion: 3,
			}
		},
	},
}

func lookupDialect(name string) (dialectInfo, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Catalog maps every message id of the named dialect to its type tag.
func Catalog(name string) map[uint32]string {
	d, ok := lookupDialect(name)
	if !ok {
		return nil
	}
	out := make(map[uint32]string, len(d.dialect.Messages))
	for _, m := range d.dialect.Messages {
		out[m.GetID()] = TypeTag(m)
	}
	return out
}
