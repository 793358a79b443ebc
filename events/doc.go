// Package events publishes meeting lifecycle events to Kafka.
//
// Events are JSON encoded and keyed by meeting ID, so all events of one
// meeting land on the same partition in order.
package events
