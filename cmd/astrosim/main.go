package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/2to4/AstroSim"
	"github.com/soniakeys/meeus/v3/julian"
)

// This code builds the catalog system and propagates it over the requested span.

const dateFormat = "2006-01-02 15:04:05"

var (
	startDate string
	days      float64
	samples   int
	mode      string
	step      time.Duration
	outName   string
	verbose   bool
)

func init() {
	// Read flags
	flag.StringVar(&startDate, "start", "", "start date (YYYY-MM-DD hh:mm:ss), J2000 epoch when unset")
	flag.Float64Var(&days, "days", 365.25, "number of days to propagate")
	flag.IntVar(&samples, "samples", 365, "number of sampling points over the span")
	flag.StringVar(&mode, "mode", "", "propagation mode (kepler or nbody), overrides configuration")
	flag.DurationVar(&step, "step", 0, "n-body integration step, overrides configuration")
	flag.StringVar(&outName, "o", "", "write a JSON snapshot of the final state to this file")
	flag.BoolVar(&verbose, "verbose", false, "log the system status at every sample")
}

func main() {
	flag.Parse()
	if samples < 1 {
		log.Fatal("at least one sample is needed")
	}

	system, err := astrosim.NewSolarSystemFromCatalog()
	if err != nil {
		log.Fatalf("building catalog system: %s", err)
	}
	if mode != "" {
		pMode, err := astrosim.PropagationModeFromString(mode)
		if err != nil {
			log.Fatal(err)
		}
		system, err = rebuildWithMode(pMode)
		if err != nil {
			log.Fatalf("building catalog system: %s", err)
		}
	}
	if step > 0 {
		system.SetStep(step)
	}

	startJD := astrosim.J2000
	if startDate != "" {
		dt, err := time.Parse(dateFormat, startDate)
		if err != nil {
			log.Fatalf("could not understand start date `%s`: %s", startDate, err)
		}
		startJD = julian.TimeToJD(dt)
	}
	if err := system.AdvanceTo(startJD); err != nil {
		log.Fatalf("advancing to start date: %s", err)
	}

	energy0, err := system.TotalEnergy()
	if err != nil {
		log.Fatalf("initial energy: %s", err)
	}
	log.Printf("[info] %s", system)
	log.Printf("[info] initial total energy: %e J", energy0)

	perSample := days / float64(samples)
	for sample := 1; sample <= samples; sample++ {
		jd := startJD + float64(sample)*perSample
		if err := system.AdvanceTo(jd); err != nil {
			log.Fatalf("advancing to JD %f: %s", jd, err)
		}
		if verbose {
			system.LogStatus()
		}
	}

	energy1, err := system.TotalEnergy()
	if err != nil {
		log.Fatalf("final energy: %s", err)
	}
	log.Printf("[info] propagated %.2f days in %d samples", days, samples)
	log.Printf("[info] final total energy: %e J (relative drift %e)", energy1, (energy1-energy0)/energy0)
	if cache := system.Cache(); cache != nil {
		log.Printf("[info] %s", cache.Stats())
	}

	if outName != "" {
		f, err := os.Create(filepath.Clean(outName))
		if err != nil {
			log.Fatalf("creating snapshot file: %s", err)
		}
		defer f.Close()
		if err := system.Snapshot().WriteJSON(f); err != nil {
			log.Fatalf("writing snapshot: %s", err)
		}
		log.Printf("[info] snapshot saved to %s", outName)
	}
}

func rebuildWithMode(mode astrosim.PropagationMode) (*astrosim.SolarSystem, error) {
	system := astrosim.NewSolarSystem(astrosim.NewSun(), mode, astrosim.NewDefaultOrbitCache())
	for _, name := range astrosim.CatalogNames() {
		planet, err := astrosim.BodyFromString(name)
		if err != nil {
			return nil, err
		}
		if err := system.AddBody(planet); err != nil {
			return nil, err
		}
	}
	return system, nil
}
