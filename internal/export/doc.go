// Package export names, writes, and locally renders exported meeting minutes.
package export
