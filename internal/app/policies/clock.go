package policies

import "time"

type Clock func() time.Time

// Now returns c() or the UTC wall clock when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}
