// Package mqtt is the messaging channel between the controller and the
// scanning peer.
//
// Channel keeps an MQTT v5 session alive with Eclipse Paho's autopaho
// connection manager. Inbound publishes are queued in an Inbox by the client
// goroutine and handed to the caller only from Poll, one at a time and in
// arrival order, so message handling runs on the control loop rather than on
// the network goroutine.
package mqtt
