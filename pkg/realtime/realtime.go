// Package realtime broadcasts round events to websocket observers and
// other sinks.
package realtime

import (
	"encoding/json"
	"time"
)

// EventActiveUsers is sent whenever an observer connects or disconnects
const EventActiveUsers = "activeUsers"

// Publisher is a fire-and-forget event sink
type Publisher interface {
	Publish(event string, payload interface{})
}

// Envelope is the wire format of every event
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	Time  int64       `json:"time"`
}

func encode(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: payload, Time: time.Now().UnixMilli()})
}

// Fanout publishes every event to each of its sinks in order
type Fanout []Publisher

// Publish implements Publisher
func (f Fanout) Publish(event string, payload interface{}) {
	for _, p := range f {
		if p != nil {
			p.Publish(event, payload)
		}
	}
}
