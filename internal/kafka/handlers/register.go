package handlers

import (
	"vn.io.arda/provisioner/internal/kafka/registry"
)

// Register is a convenience alias so each handler file calls Register(...)
// instead of registry.Register(...), keeping imports minimal.
func Register(topic, eventName string, h registry.EventHandler) {
	registry.Register(topic, eventName, h)
}

// RegisterDirect registers a handler for topics without event-name routing.
func RegisterDirect(topic string, h registry.EventHandler) {
	registry.RegisterDirect(topic, h)
}
