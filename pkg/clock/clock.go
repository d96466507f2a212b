package clock

import (
	"errors"
	"time"

	clockapi "github.com/benbjohnson/clock"
)

var realClock = clockapi.New()

// Clock follows real time until Set pins it to a mock, which tests then
// move with Add. The zero value is ready to use.
type Clock struct {
	mock *clockapi.Mock
}

func (c *Clock) Set(t time.Time) {
	if c.mock == nil {
		c.mock = clockapi.NewMock()
	}
	c.mock.Set(t)
}

// Add moves a mocked clock forward.
func (c *Clock) Add(d time.Duration) error {
	if c.mock == nil {
		return errors.New("clock not mocked")
	}
	c.mock.Add(d)
	return nil
}

// Reset goes back to real time.
func (c *Clock) Reset() {
	c.mock = nil
}

func (c *Clock) source() clockapi.Clock {
	if c.mock == nil {
		return realClock
	}
	return c.mock
}

func (c *Clock) Now() time.Time {
	return c.source().Now()
}

func (c *Clock) Since(t time.Time) time.Duration {
	return c.source().Since(t)
}
