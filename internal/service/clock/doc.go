// Package clock runs the wake-up alarm controller.
//
// Run connects to the broker, arms the alarm once after the configured delay
// and then repeatedly polls the channel, dispatching inbound messages into the
// coordinator on the control loop's own goroutine. The optional status API
// runs alongside and shares the same coordinator.
package clock
