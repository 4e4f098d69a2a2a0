// Package report classifies raw HID input reports from the headset
// receiver into semantic link events.
package report

// Report kinds (first byte of a raw report).
const (
	kindHeartbeat = 0x01
	kindPower     = 0x03
)

// Event is the semantic meaning of one raw report.
type Event int

const (
	EventUnknown Event = iota
	EventPowerOn
	EventPowerOff
	EventHeartbeatOnline
	EventHeartbeatOffline
)

func (e Event) String() string {
	switch e {
	case EventPowerOn:
		return "power-on"
	case EventPowerOff:
		return "power-off"
	case EventHeartbeatOnline:
		return "heartbeat-online"
	case EventHeartbeatOffline:
		return "heartbeat-offline"
	default:
		return "unknown"
	}
}

// Classify maps a raw report to an Event. It is total: short, empty or
// unrecognized reports come back as EventUnknown, never an error.
func Classify(data []byte) Event {
	if len(data) == 0 {
		return EventUnknown
	}
	switch data[0] {
	case kindHeartbeat:
		if len(data) >= 3 {
			if data[1] == 1 && data[2] == 6 {
				return EventHeartbeatOnline
			}
			if data[1] == 0 && data[2] == 18 {
				return EventHeartbeatOffline
			}
		}
		return EventUnknown
	case kindPower:
		// All four guard bytes must match; anything else falls through
		// to unknown rather than misreading a foreign report kind.
		if len(data) >= 6 && data[1] == 0 && data[2] == 1 && data[3] == 54 && data[4] == 0 {
			switch data[5] {
			case 2:
				return EventPowerOn
			case 0:
				return EventPowerOff
			}
		}
		return EventUnknown
	}
	return EventUnknown
}

// IsHeartbeatFrame reports whether the raw report is heartbeat-kind,
// regardless of whether its payload classifies to a known event. The
// accumulate tracker mode counts these frames payload-agnostically.
func IsHeartbeatFrame(data []byte) bool {
	return len(data) > 0 && data[0] == kindHeartbeat
}
