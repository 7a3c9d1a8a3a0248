// Package alarm contains core domain types for the wake-up alarm.
//
// It defines the closed Location enumeration, the two-phase alarm State
// (Idle or Armed with a target location), the Actor who triggered a cycle,
// and the topics and payloads exchanged with the scanning peer.
package alarm
