// Abstract rendering surface for the status panel.
// Drivers are slow and must never be called concurrently; the UI loop is
// the only caller.
package panel

import "image"

// Lifecycle contract: Init once, Draw repeatedly, Sleep once at shutdown.
type Panel interface {
	Init() error
	Draw(f *Frame) error
	Clear() error
	Sleep() error
	Size() image.Point
}
