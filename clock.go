package astrosim

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// J2000 is the Julian date of the J2000.0 epoch (2000-01-01T12:00:00 UTC).
	J2000 = 2451545.0
	// MinTimeScale is the slowest supported time scale multiplier.
	MinTimeScale = 0.01
	// MaxTimeScale is the fastest supported time scale multiplier.
	MaxTimeScale = 1000.0

	secondsPerDay = 86400.0
)

// TimeToJD converts a calendar timestamp to a Julian date. The timestamp is
// interpreted on the Gregorian calendar for the whole supported range.
func TimeToJD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JDToTime converts a Julian date back to a calendar timestamp in UTC.
// TimeToJD and JDToTime are exact inverses to within floating point rounding.
func JDToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC()
}

// Clock tracks the simulated time axis as a continuous Julian date, together
// with the time scale multiplier and the pause flag. The caller owns the real
// time ticker and feeds either raw day deltas or real second ticks.
type Clock struct {
	jd     float64
	scale  float64
	paused bool
}

// NewClock returns a clock set to the provided calendar timestamp.
func NewClock(start time.Time) *Clock {
	return NewClockFromJD(TimeToJD(start))
}

// NewClockFromJD returns a clock set to the provided Julian date.
func NewClockFromJD(jd float64) *Clock {
	return &Clock{jd: jd, scale: 1.0}
}

// JD returns the current simulated Julian date.
func (c *Clock) JD() float64 {
	return c.jd
}

// Now returns the current simulated time as a calendar timestamp.
func (c *Clock) Now() time.Time {
	return JDToTime(c.jd)
}

// SetDate resets the clock to the provided calendar timestamp.
func (c *Clock) SetDate(t time.Time) {
	c.jd = TimeToJD(t)
}

// Scale returns the current time scale multiplier.
func (c *Clock) Scale() float64 {
	return c.scale
}

// SetScale stores the time scale multiplier. The supported range is
// MinTimeScale to MaxTimeScale.
func (c *Clock) SetScale(factor float64) error {
	if factor < MinTimeScale || factor > MaxTimeScale {
		return fmt.Errorf("time scale %f outside supported range [%g, %g]", factor, MinTimeScale, MaxTimeScale)
	}
	c.scale = factor
	return nil
}

// Pause stops the clock: subsequent deltas are ignored until Resume.
func (c *Clock) Pause() {
	c.paused = true
}

// Resume restarts a paused clock.
func (c *Clock) Resume() {
	c.paused = false
}

// TogglePause flips the pause flag and returns the new state.
func (c *Clock) TogglePause() bool {
	c.paused = !c.paused
	return c.paused
}

// Paused returns whether the clock is paused.
func (c *Clock) Paused() bool {
	return c.paused
}

// Advance moves the simulated time by the given number of days and returns
// the new Julian date. While paused the delta is ignored.
func (c *Clock) Advance(deltaDays float64) float64 {
	if c.paused {
		return c.jd
	}
	c.jd += deltaDays
	return c.jd
}

// Tick converts a real time tick into simulated days using the scale
// multiplier and advances the clock by that amount.
func (c *Clock) Tick(realSeconds float64) float64 {
	return c.Advance(realSeconds * c.scale / secondsPerDay)
}

// DaysSinceJ2000 returns the number of days elapsed since the J2000.0 epoch.
func (c *Clock) DaysSinceJ2000() float64 {
	return c.jd - J2000
}

// JulianCenturies returns the number of Julian centuries since J2000.0.
func (c *Clock) JulianCenturies() float64 {
	return c.DaysSinceJ2000() / 36525.0
}

// GreenwichSiderealTime returns the Greenwich mean sidereal time in degrees,
// normalized to [0, 360).
func (c *Clock) GreenwichSiderealTime() float64 {
	t := c.JulianCenturies()
	gst := 280.46061837 + 360.98564736629*c.DaysSinceJ2000() +
		0.000387933*t*t - t*t*t/38710000.0
	gst = math.Mod(gst, 360)
	if gst < 0 {
		gst += 360
	}
	return gst
}

// String implements the Stringer interface.
func (c *Clock) String() string {
	status := "running"
	if c.paused {
		status = "paused"
	}
	return fmt.Sprintf("%s (JD %.5f, x%.2f, %s)", c.Now().Format("2006-01-02 15:04:05"), c.jd, c.scale, status)
}
