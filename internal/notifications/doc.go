// Package notifications delivers daemon events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. Event
// categories (lifecycle, item failures, health transitions) can be silenced
// individually in the [notifications] config section.
//
// Extend this package if you need alternative transports; daemon code depends
// only on the Service interface.
package notifications
