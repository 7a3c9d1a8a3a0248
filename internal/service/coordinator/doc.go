// Package coordinator owns the arm/trigger/disarm state of the wake-up alarm.
//
// A Coordinator arms the alarm with a randomly chosen target location, sounds
// the buzzer, announces the target to the broker and waits for the scanning
// peer to report the same location. Trigger and HandleLocationReport each run
// as one critical section covering the state check, the decision, the state
// write, the buzzer command and the publishes, so the buzzer is sounding
// exactly while the state is Armed.
package coordinator
