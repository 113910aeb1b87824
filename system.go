package astrosim

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// PropagationMode selects how AdvanceTo moves the bodies.
type PropagationMode uint8

const (
	// KeplerPropagation propagates each body analytically on its two-body
	// orbit, through the orbit cache.
	KeplerPropagation PropagationMode = iota + 1
	// NBodyPropagation integrates the full pairwise gravitational system
	// with fixed-step RK4.
	NBodyPropagation
)

func (m PropagationMode) String() string {
	switch m {
	case KeplerPropagation:
		return "kepler"
	case NBodyPropagation:
		return "nbody"
	}
	panic("cannot stringify unknown propagation mode")
}

// PropagationModeFromString parses a propagation mode name.
func PropagationModeFromString(name string) (PropagationMode, error) {
	switch strings.ToLower(name) {
	case "kepler":
		return KeplerPropagation, nil
	case "nbody":
		return NBodyPropagation, nil
	default:
		return 0, fmt.Errorf("undefined propagation mode '%s'", name)
	}
}

// SolarSystem owns the central star and the named set of orbiting planets,
// and drives their state to a common Julian date. The propagation mode is
// fixed at construction: the two modes must never be mixed for the same body
// within one simulated interval.
type SolarSystem struct {
	star    *Star
	planets map[string]*Planet
	names   []string // insertion order
	jd      float64
	mode    PropagationMode
	cache   *OrbitCache
	step    time.Duration // n-body integration step
	logger  kitlog.Logger
}

// NewSolarSystem creates an empty system around the provided star. A nil
// cache disables memoization for Kepler propagation.
func NewSolarSystem(star *Star, mode PropagationMode, cache *OrbitCache) *SolarSystem {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "subsys", "system", "star", star.Name())
	return &SolarSystem{
		star:    star,
		planets: make(map[string]*Planet),
		jd:      J2000,
		mode:    mode,
		cache:   cache,
		step:    time.Hour,
		logger:  logger,
	}
}

// NewSolarSystemFromCatalog builds the Sun and the eight catalog planets,
// propagated with the configured mode and cache settings.
func NewSolarSystemFromCatalog() (*SolarSystem, error) {
	conf := astroConfig()
	mode, err := PropagationModeFromString(conf.mode)
	if err != nil {
		return nil, err
	}
	ss := NewSolarSystem(NewSun(), mode, NewOrbitCache(conf.cacheCapacity, conf.cacheTolerance))
	ss.step = conf.step
	for _, name := range CatalogNames() {
		planet, err := BodyFromString(name)
		if err != nil {
			return nil, err
		}
		if err := ss.AddBody(planet); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

// SetLogger replaces the system logger.
func (ss *SolarSystem) SetLogger(logger kitlog.Logger) {
	ss.logger = logger
}

// SetStep sets the fixed n-body integration step.
func (ss *SolarSystem) SetStep(step time.Duration) {
	ss.step = step
}

// Star returns the central body.
func (ss *SolarSystem) Star() *Star {
	return ss.star
}

// Mode returns the propagation mode.
func (ss *SolarSystem) Mode() PropagationMode {
	return ss.mode
}

// JD returns the Julian date the system was last advanced to.
func (ss *SolarSystem) JD() float64 {
	return ss.jd
}

// Cache returns the orbit cache, nil when memoization is disabled.
func (ss *SolarSystem) Cache() *OrbitCache {
	return ss.cache
}

// AddBody registers a planet. Names are unique, case-insensitively.
func (ss *SolarSystem) AddBody(p *Planet) error {
	key := strings.ToLower(p.Name())
	if _, exists := ss.planets[key]; exists {
		return fmt.Errorf("body '%s' already exists in this system", p.Name())
	}
	ss.planets[key] = p
	ss.names = append(ss.names, key)
	return nil
}

// BodyByName returns a planet by its name, case-insensitively.
func (ss *SolarSystem) BodyByName(name string) (*Planet, bool) {
	p, found := ss.planets[strings.ToLower(name)]
	return p, found
}

// Planets returns the planets in insertion order.
func (ss *SolarSystem) Planets() []*Planet {
	planets := make([]*Planet, len(ss.names))
	for i, key := range ss.names {
		planets[i] = ss.planets[key]
	}
	return planets
}

// Bodies returns the star followed by the planets in insertion order.
func (ss *SolarSystem) Bodies() []CelestialBody {
	bodies := make([]CelestialBody, 0, len(ss.names)+1)
	bodies = append(bodies, ss.star)
	for _, p := range ss.Planets() {
		bodies = append(bodies, p)
	}
	return bodies
}

// AdvanceTo recomputes every body state at the provided Julian date. Kepler
// mode asks each planet to update through the cache; n-body mode integrates
// the whole system over the elapsed interval in fixed RK4 steps. Numeric
// errors bubble up unmodified.
func (ss *SolarSystem) AdvanceTo(jd float64) error {
	switch ss.mode {
	case KeplerPropagation:
		for _, p := range ss.Planets() {
			if err := p.UpdatePosition(jd, ss.star.Mass(), ss.cache); err != nil {
				return fmt.Errorf("advancing %s to JD %f: %w", p.Name(), jd, err)
			}
		}
	case NBodyPropagation:
		// Bodies that were never propagated start from their element state.
		for _, p := range ss.Planets() {
			if norm(p.r) == 0 {
				if err := p.UpdatePosition(ss.jd, ss.star.Mass(), nil); err != nil {
					return fmt.Errorf("seeding %s at JD %f: %w", p.Name(), ss.jd, err)
				}
			}
		}
		elapsed := (jd - ss.jd) * secondsPerDay
		if elapsed != 0 {
			stepSec := ss.step.Seconds()
			n := int(math.Ceil(math.Abs(elapsed) / stepSec))
			dt := elapsed / float64(n)
			if err := IntegrateSteps(ss.Bodies(), dt, n); err != nil {
				return fmt.Errorf("advancing system to JD %f: %w", jd, err)
			}
			for _, p := range ss.Planets() {
				p.currentJD = jd
			}
		}
	default:
		panic(fmt.Errorf("unknown propagation mode %d", ss.mode))
	}
	ss.jd = jd
	return nil
}

// TotalEnergy returns the total mechanical energy of the system in joules:
// the kinetic energy of every body plus the gravitational potential energy
// summed over all pairs. It errors until every planet has a non degenerate
// position (i.e. before the first AdvanceTo).
func (ss *SolarSystem) TotalEnergy() (float64, error) {
	bodies := ss.Bodies()
	for _, body := range bodies[1:] {
		if norm(body.Position()) == 0 {
			return 0, fmt.Errorf("body '%s' has a degenerate position, advance the system first", body.Name())
		}
	}
	var kinetic, potential float64
	for i, body := range bodies {
		v := norm(body.Velocity()) * auMeters / secondsPerDay // m/s
		kinetic += 0.5 * body.Mass() * v * v
		for _, other := range bodies[i+1:] {
			rVec := make([]float64, 3)
			bPos, oPos := body.Position(), other.Position()
			for k := 0; k < 3; k++ {
				rVec[k] = (oPos[k] - bPos[k]) * auMeters
			}
			potential -= G * body.Mass() * other.Mass() / norm(rVec)
		}
	}
	return kinetic + potential, nil
}

// TotalAngularMomentum returns Σ rᵢ × mᵢvᵢ in kg·m²/s.
func (ss *SolarSystem) TotalAngularMomentum() ([]float64, error) {
	total := []float64{0, 0, 0}
	for _, body := range ss.Bodies() {
		if _, isStar := body.(*Star); !isStar && norm(body.Position()) == 0 {
			return nil, fmt.Errorf("body '%s' has a degenerate position, advance the system first", body.Name())
		}
		r := body.Position()
		v := body.Velocity()
		for i := 0; i < 3; i++ {
			r[i] *= auMeters
			v[i] *= body.Mass() * auMeters / secondsPerDay
		}
		l := cross(r, v)
		for i := 0; i < 3; i++ {
			total[i] += l[i]
		}
	}
	return total, nil
}

// LogStatus logs the aggregate state of the system.
func (ss *SolarSystem) LogStatus() {
	if ss.cache != nil {
		ss.logger.Log("level", "info", "jd", ss.jd, "mode", ss.mode, "bodies", len(ss.names), "cache", ss.cache.Stats())
		return
	}
	ss.logger.Log("level", "info", "jd", ss.jd, "mode", ss.mode, "bodies", len(ss.names))
}

// String implements the Stringer interface.
func (ss *SolarSystem) String() string {
	return fmt.Sprintf("%s system (%d planets, %s propagation, JD %.5f)", ss.star.Name(), len(ss.names), ss.mode, ss.jd)
}
