// Package config holds the scoring settings which can be loaded from a
// YAML file and overridden on the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ashahba/medical-decathlon/metric"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Threshold above which a predicted probability counts as foreground when
// masks are binarised before scoring.
const DefaultThreshold = 0.5

// Scoring configuration settings
type Config struct {
	Smooth      float64 `yaml:"smooth"`
	BlendWeight float64 `yaml:"blend_weight"`
	Threshold   float64 `yaml:"threshold"`
}

// Default returns the standard settings.
func Default() Config {
	return Config{
		Smooth:      metric.DefaultSmooth,
		BlendWeight: metric.DefaultWeight,
		Threshold:   DefaultThreshold,
	}
}

// Load reads settings from a YAML file. Settings missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "error reading config file")
	}
	if err = yaml.Unmarshal(data, &c); err != nil {
		return c, errors.Wrapf(err, "error parsing config file %s", path)
	}
	return c, c.Validate()
}

// Save writes the settings to a YAML file, replacing the target only once
// the write has completed.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "error encoding config")
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path))
	if err = os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return errors.Wrap(os.Rename(tmp, path), "error writing config file")
}

// Validate checks the settings are usable for scoring.
func (c Config) Validate() error {
	if !(c.Smooth > 0) {
		return metric.SmoothError{Value: c.Smooth}
	}
	if !(c.BlendWeight >= 0 && c.BlendWeight <= 1) {
		return metric.WeightError{Value: c.BlendWeight}
	}
	if !(c.Threshold >= 0 && c.Threshold <= 1) {
		return errors.Errorf("threshold must be in range [0,1]: have %g", c.Threshold)
	}
	return nil
}

func (c Config) Fields() []string {
	st := reflect.TypeOf(c)
	fld := make([]string, st.NumField())
	for i := range fld {
		fld[i] = st.Field(i).Name
	}
	return fld
}

func (c Config) Get(key string) interface{} {
	s := reflect.ValueOf(c)
	return s.FieldByName(key).Interface()
}

// Set updates the named field from its string representation, used to
// apply key=value arguments over the loaded settings.
func (c Config) Set(key, val string) (Config, error) {
	s := reflect.ValueOf(&c).Elem()
	f := s.FieldByName(key)
	if !f.IsValid() {
		return c, errors.Errorf("no such config setting: %s", key)
	}
	x, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return c, errors.Wrapf(err, "error parsing value for %s", key)
	}
	f.SetFloat(x)
	return c, c.Validate()
}

func (c Config) String() string {
	str := []string{"== Config =="}
	for _, key := range c.Fields() {
		str = append(str, fmt.Sprintf("%-12s: %v", key, c.Get(key)))
	}
	return strings.Join(str, "\n")
}
