package feed

// Latch is a one-shot trigger per page boundary. It turns repeated "trailing
// item is visible" signals into a single page request: Trip succeeds once for
// a boundary and fails for that boundary until a different boundary trips it
// or the latch is reset. The zero value is open.
type Latch struct {
	boundary string
	tripped  bool
}

// Trip reports whether boundary was not yet tripped, and trips it.
func (l *Latch) Trip(boundary string) bool {
	if l.tripped && l.boundary == boundary {
		return false
	}
	l.boundary = boundary
	l.tripped = true
	return true
}

// Release reopens the latch if boundary is the one currently tripped.
func (l *Latch) Release(boundary string) {
	if l.tripped && l.boundary == boundary {
		l.tripped = false
	}
}

// Reset reopens the latch for any boundary.
func (l *Latch) Reset() {
	*l = Latch{}
}
