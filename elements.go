package astrosim

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/gonum/floats"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 1e-6                         // in AU
)

// Elements holds the six Keplerian orbital elements plus their epoch. The
// semi-major axis is in AU, all angles are stored in radians and normalized
// to [0, 2π), the epoch is a Julian date. The value is immutable.
type Elements struct {
	a, e, i, Ω, ω, M0 float64
	epoch             float64
}

// NewElements creates orbital elements from radians. It rejects a non
// positive semi-major axis and any eccentricity outside [0, 1).
func NewElements(a, e, i, Ω, ω, M0, epoch float64) (Elements, error) {
	if a <= 0 {
		return Elements{}, fmt.Errorf("semi-major axis must be strictly positive, got %f AU", a)
	}
	if e < 0 || e >= 1 {
		return Elements{}, InvalidEccentricityError{e}
	}
	return Elements{a, e, normAngle(i), normAngle(Ω), normAngle(ω), normAngle(M0), epoch}, nil
}

// NewElementsDeg creates orbital elements with the angles in degrees.
func NewElementsDeg(a, e, i, Ω, ω, M0, epoch float64) (Elements, error) {
	return NewElements(a, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), Deg2rad(M0), epoch)
}

// SemiMajorAxis returns a in AU.
func (el Elements) SemiMajorAxis() float64 { return el.a }

// Eccentricity returns e.
func (el Elements) Eccentricity() float64 { return el.e }

// Inclination returns i in radians.
func (el Elements) Inclination() float64 { return el.i }

// RAAN returns the longitude of the ascending node Ω in radians.
func (el Elements) RAAN() float64 { return el.Ω }

// ArgPeriapsis returns the argument of periapsis ω in radians.
func (el Elements) ArgPeriapsis() float64 { return el.ω }

// MeanAnomalyAtEpoch returns M₀ in radians.
func (el Elements) MeanAnomalyAtEpoch() float64 { return el.M0 }

// Epoch returns the epoch as a Julian date.
func (el Elements) Epoch() float64 { return el.epoch }

// SemiParameter returns the semi-parameter p = a(1-e²).
func (el Elements) SemiParameter() float64 {
	return el.a * (1 - el.e*el.e)
}

// Perihelion returns the periapsis distance in AU.
func (el Elements) Perihelion() float64 {
	return el.a * (1 - el.e)
}

// Aphelion returns the apoapsis distance in AU.
func (el Elements) Aphelion() float64 {
	return el.a * (1 + el.e)
}

// MeanMotion returns n = √(GM/a³) in rad/day for the provided central mass
// in kg.
func (el Elements) MeanMotion(centralMass float64) (float64, error) {
	if centralMass <= 0 {
		return 0, InvalidMassError{centralMass}
	}
	return meanMotion(el.a, centralMass), nil
}

// Period returns the orbital period in days for the provided central mass.
func (el Elements) Period(centralMass float64) (float64, error) {
	n, err := el.MeanMotion(centralMass)
	if err != nil {
		return 0, err
	}
	return 2 * math.Pi / n, nil
}

// MeanAnomalyAt returns the mean anomaly at the provided Julian date,
// normalized to [0, 2π).
func (el Elements) MeanAnomalyAt(jd, centralMass float64) (float64, error) {
	n, err := el.MeanMotion(centralMass)
	if err != nil {
		return 0, err
	}
	return normAngle(el.M0 + n*(jd-el.epoch)), nil
}

// Equals returns whether the two element sets describe the same orbit.
func (el Elements) Equals(o Elements) (bool, error) {
	if !floats.EqualWithinAbs(el.a, o.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !floats.EqualWithinAbs(el.e, o.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !floats.EqualWithinAbs(el.i, o.i, angleε) {
		return false, errors.New("inclination invalid")
	}
	if !floats.EqualWithinAbs(el.Ω, o.Ω, angleε) {
		return false, errors.New("RAAN invalid")
	}
	if !floats.EqualWithinAbs(el.ω, o.ω, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	if !floats.EqualWithinAbs(el.M0, o.M0, angleε) {
		return false, errors.New("mean anomaly invalid")
	}
	if !floats.EqualWithinAbs(el.epoch, o.epoch, 1e-9) {
		return false, errors.New("epoch invalid")
	}
	return true, nil
}

// key serializes the elements deterministically for use in cache keys.
func (el Elements) key() string {
	return fmt.Sprintf("%.15e|%.15e|%.15e|%.15e|%.15e|%.15e|%.15e", el.a, el.e, el.i, el.Ω, el.ω, el.M0, el.epoch)
}

// String implements the stringer interface.
func (el Elements) String() string {
	return fmt.Sprintf("a=%.6f AU e=%.6f i=%.3f Ω=%.3f ω=%.3f M₀=%.3f @JD%.1f",
		el.a, el.e, Rad2deg(el.i), Rad2deg(el.Ω), Rad2deg(el.ω), Rad2deg(el.M0), el.epoch)
}

type elementsJSON struct {
	SemiMajorAxis    float64 `json:"semi_major_axis"`
	Eccentricity     float64 `json:"eccentricity"`
	Inclination      float64 `json:"inclination"`
	AscendingNode    float64 `json:"longitude_of_ascending_node"`
	ArgOfPeriapsis   float64 `json:"argument_of_periapsis"`
	MeanAnomalyEpoch float64 `json:"mean_anomaly_at_epoch"`
	Epoch            float64 `json:"epoch"`
}

// MarshalJSON implements json.Marshaler. Angles are serialized in radians.
func (el Elements) MarshalJSON() ([]byte, error) {
	return json.Marshal(elementsJSON{el.a, el.e, el.i, el.Ω, el.ω, el.M0, el.epoch})
}

// UnmarshalJSON implements json.Unmarshaler, re-validating the elements.
func (el *Elements) UnmarshalJSON(data []byte) error {
	var raw elementsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewElements(raw.SemiMajorAxis, raw.Eccentricity, raw.Inclination, raw.AscendingNode, raw.ArgOfPeriapsis, raw.MeanAnomalyEpoch, raw.Epoch)
	if err != nil {
		return err
	}
	*el = parsed
	return nil
}
