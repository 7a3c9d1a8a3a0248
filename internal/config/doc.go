// Package config defines the settings shared by the wake-up alarm binaries
// and provides helpers to load, validate and save them in YAML format.
//
// Config holds the broker session (MQTT), the buzzer tone, the closed set of
// locations, control-loop timings and the status API address.
package config
