// Package trigger arms the wake-up alarm remotely through the status API.
package trigger
