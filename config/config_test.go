package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashahba/medical-decathlon/metric"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Smooth != 1 || c.BlendWeight != 0.9 || c.Threshold != 0.5 {
		t.Error("got", c)
	}
	if err := c.Validate(); err != nil {
		t.Error("defaults should validate: got", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.yaml")
	c := Config{Smooth: 0.5, BlendWeight: 0.8, Threshold: 0.4}
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Error("got", got, "expect", c)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "score.yaml")
	if err := os.WriteFile(path, []byte("smooth: 2.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Smooth != 2.5 || c.BlendWeight != 0.9 || c.Threshold != 0.5 {
		t.Error("got", c)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file: expect error")
	}
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("smooth: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("bad yaml: expect error")
	}
	if err := os.WriteFile(path, []byte("smooth: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid smoothing: expect error")
	} else if _, ok := err.(metric.SmoothError); !ok {
		t.Errorf("invalid smoothing: got %T", err)
	}
}

func TestSet(t *testing.T) {
	c, err := Default().Set("Smooth", "2")
	if err != nil {
		t.Fatal(err)
	}
	if c.Smooth != 2 {
		t.Error("got", c.Smooth, "expect", 2.0)
	}
	if _, err = c.Set("Nope", "1"); err == nil {
		t.Error("unknown key: expect error")
	}
	if _, err = c.Set("Smooth", "abc"); err == nil {
		t.Error("bad value: expect error")
	}
	if _, err = c.Set("BlendWeight", "1.5"); err == nil {
		t.Error("out of range weight: expect error")
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	for _, want := range []string{"== Config ==", "Smooth", "BlendWeight", "Threshold"} {
		if !strings.Contains(s, want) {
			t.Error("missing", want, "in", s)
		}
	}
}
