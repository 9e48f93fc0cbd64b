package clock

import "time"

// System reads the wall clock. The only place in the codebase that does.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}
