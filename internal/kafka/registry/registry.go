// Package registry provides a lightweight event handler registry for the
// bucket-notification topics. Each handler registers itself via init(), so
// the consumer never changes when a new event shape is added.
package registry

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"vn.io.arda/provisioner/internal/domain"
)

// EventHandler maps raw message bytes to the batch sources they announce.
// Returning nil means "skip this event" (nothing to provision).
type EventHandler func(data []byte) []domain.BatchRef

var handlers = map[string]EventHandler{}

// Register binds a handler to a {topic}:{eventName} key. The eventName is the
// S3-style "s3:ObjectCreated" family prefix; the trailing operation segment
// (Put, Post, CompleteMultipartUpload) is ignored at dispatch.
// Panics on duplicate registration to catch wiring mistakes early.
func Register(topic, eventName string, h EventHandler) {
	key := topic + ":" + eventName
	if _, exists := handlers[key]; exists {
		panic("registry: duplicate handler registered for key: " + key)
	}
	handlers[key] = h
}

// RegisterDirect binds a handler to a topic whose entire message is the
// payload, with no event-name routing.
func RegisterDirect(topic string, h EventHandler) {
	Register(topic, "", h)
}

// Dispatch looks up and calls the handler for the given topic + event name.
// Returns nil if no handler matches or the message cannot be probed.
func Dispatch(topic string, data []byte) []domain.BatchRef {
	var probe struct {
		EventName string `json:"EventName"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		log.Warn().Str("topic", topic).Err(err).Msg("registry: failed to probe event name")
		return nil
	}

	key := topic + ":" + eventFamily(probe.EventName)
	h, ok := handlers[key]
	if !ok {
		log.Debug().Str("key", key).Msg("registry: no handler registered")
		return nil
	}
	return h(data)
}

// DispatchDirect calls the handler registered for a topic without event-name
// routing. Used for the manual re-run command topic.
func DispatchDirect(topic string, data []byte) []domain.BatchRef {
	h, ok := handlers[topic+":"]
	if !ok {
		return nil
	}
	return h(data)
}

// eventFamily reduces "s3:ObjectCreated:Put" to "s3:ObjectCreated".
func eventFamily(name string) string {
	parts := strings.SplitN(name, ":", 3)
	if len(parts) < 2 {
		return name
	}
	return parts[0] + ":" + parts[1]
}
