// Package actuator drives the audible alarm output.
//
// LogBuzzer simulates the buzzer in the log and remembers its last command;
// PWMBuzzer drives a Linux sysfs PWM channel wired to a piezo buzzer.
package actuator
