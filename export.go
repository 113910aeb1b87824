package astrosim

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Snapshot is a serializable capture of a full system state at one Julian
// date. Positions are in AU and velocities in AU/day, orbital element angles
// in radians.
type Snapshot struct {
	JD     float64      `json:"jd"`
	Mode   string       `json:"mode"`
	Star   StarRecord   `json:"star"`
	Bodies []BodyRecord `json:"bodies"`
}

// StarRecord captures the central star.
type StarRecord struct {
	Name   string  `json:"name"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
}

// BodyRecord captures one planet.
type BodyRecord struct {
	Name           string    `json:"name"`
	Mass           float64   `json:"mass"`
	Radius         float64   `json:"radius"`
	Elements       Elements  `json:"elements"`
	Color          Color     `json:"color"`
	RotationPeriod float64   `json:"rotation_period"`
	AxialTilt      float64   `json:"axial_tilt"`
	R              []float64 `json:"r"`
	V              []float64 `json:"v"`
}

// Snapshot captures the current state of the system.
func (ss *SolarSystem) Snapshot() Snapshot {
	planets := ss.Planets()
	snap := Snapshot{
		JD:   ss.jd,
		Mode: ss.mode.String(),
		Star: StarRecord{Name: ss.star.Name(), Mass: ss.star.Mass(), Radius: ss.star.Radius()},
	}
	for _, p := range planets {
		snap.Bodies = append(snap.Bodies, BodyRecord{
			Name:           p.Name(),
			Mass:           p.Mass(),
			Radius:         p.Radius(),
			Elements:       p.Elements(),
			Color:          p.Color(),
			RotationPeriod: p.RotationPeriod(),
			AxialTilt:      p.AxialTilt(),
			R:              p.Position(),
			V:              p.Velocity(),
		})
	}
	return snap
}

// WriteJSON writes the snapshot as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one record per body with the state vector at the snapshot
// date. The header is name,jd,rx,ry,rz,vx,vy,vz.
func (s Snapshot) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "jd", "rx", "ry", "rz", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for _, body := range s.Bodies {
		record := []string{body.Name, strconv.FormatFloat(s.JD, 'f', -1, 64)}
		for _, val := range append(append([]float64{}, body.R...), body.V...) {
			record = append(record, strconv.FormatFloat(val, 'e', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadSnapshot reads a JSON snapshot and reconstructs the system it
// captured, with every body restored to the recorded state.
func LoadSnapshot(r io.Reader) (*SolarSystem, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	mode, err := PropagationModeFromString(snap.Mode)
	if err != nil {
		return nil, err
	}
	star, err := NewStar(snap.Star.Name, snap.Star.Mass, snap.Star.Radius)
	if err != nil {
		return nil, err
	}
	conf := astroConfig()
	ss := NewSolarSystem(star, mode, NewOrbitCache(conf.cacheCapacity, conf.cacheTolerance))
	ss.jd = snap.JD
	for _, body := range snap.Bodies {
		if len(body.R) != 3 || len(body.V) != 3 {
			return nil, fmt.Errorf("body '%s' carries a malformed state vector", body.Name)
		}
		planet, err := NewPlanet(body.Name, body.Mass, body.Radius, body.Elements, body.Color)
		if err != nil {
			return nil, err
		}
		planet.SetRotation(body.RotationPeriod, body.AxialTilt)
		planet.setState(body.R, body.V)
		planet.currentJD = snap.JD
		if err := ss.AddBody(planet); err != nil {
			return nil, err
		}
	}
	return ss, nil
}
