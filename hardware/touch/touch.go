// Abstract pointer source for the touch overlay.
// A source yields at most one raw (x,y) reading per Scan, in sensor
// orientation; the UI input pipeline remaps to panel coordinates.
package touch

type Sample struct{ X, Y int }

type Pointer interface {
	Init() error
	// Scan returns one pending sample or ok=false when nothing touched.
	// Never blocks.
	Scan() (Sample, bool, error)
	Close() error
}
