// Package sysfs writes values to kernel LED class control files.
package sysfs

// Writer abstracts writes against sysfs control files so the HAL can be
// exercised without real hardware.
type Writer interface {
	// WriteInt writes a decimal integer, newline terminated.
	WriteInt(path string, value int) error

	// WriteString writes a string, newline terminated.
	WriteString(path string, value string) error
}
