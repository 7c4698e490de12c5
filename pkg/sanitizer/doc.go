// Package sanitizer normalizes user-entered contact and profile fields
// before they are validated or stored.
package sanitizer
