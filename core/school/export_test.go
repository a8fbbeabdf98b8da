package school

import "time"

// SetNowFunc replaces the clock used to stamp records and returns a func restoring the previous one.
func SetNowFunc(f func() time.Time) (reset func()) {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}
