// Package status serves the gRPC status API next to the alarm controller.
//
// Serve blocks until the context is cancelled and then stops the server
// gracefully; ListenAddress derives the bind address from the configured
// status address.
package status
