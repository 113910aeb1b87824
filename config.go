package astrosim

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _astroconfig{}
)

// _astroconfig is a "hidden" struct, just use `astroConfig`
type _astroconfig struct {
	cacheCapacity  int
	cacheTolerance float64 // days
	step           time.Duration
	mode           string
	outputDir      string
}

// astroConfig returns the astrosim configuration. The configuration file is
// optional: when the ASTROSIM_CONFIG environment variable is unset, or no
// conf.toml exists there, every setting falls back to its default.
func astroConfig() _astroconfig {
	if cfgLoaded {
		return config
	}
	config = _astroconfig{
		cacheCapacity:  DefaultCacheCapacity,
		cacheTolerance: DefaultTimeTolerance,
		step:           time.Hour,
		mode:           "kepler",
		outputDir:      "./",
	}
	confPath := os.Getenv("ASTROSIM_CONFIG")
	if confPath == "" {
		cfgLoaded = true
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "%s/conf.toml not found, using defaults\n", confPath)
		cfgLoaded = true
		return config
	}
	if viper.IsSet("cache.capacity") {
		config.cacheCapacity = viper.GetInt("cache.capacity")
	}
	if viper.IsSet("cache.tolerance") {
		config.cacheTolerance = viper.GetFloat64("cache.tolerance")
	}
	if viper.IsSet("propagation.step") {
		config.step = viper.GetDuration("propagation.step")
	}
	if viper.IsSet("propagation.mode") {
		config.mode = viper.GetString("propagation.mode")
	}
	if viper.IsSet("general.output_path") {
		config.outputDir = viper.GetString("general.output_path")
	}
	cfgLoaded = true
	return config
}
