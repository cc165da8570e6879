// Package mmfile provides platform-specific helpers for mapping memory images.
package mmfile
