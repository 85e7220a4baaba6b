// Package regioncfg loads the controller's static region/group declarations
// and derives the runtime Config described in spec §3/§6 from them: time-unit
// strings become millisecond counts, and interval/threshold fields are
// expanded per the documented formulas. This is the minimal "parsed
// configuration" input the state store is built from at controller start; it
// is not a general-purpose CLI/YAML UX layer.
package regioncfg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brindlewatch/watchdog/internal/model"
)

// File is the on-disk declaration shape, decoded with gopkg.in/yaml.v3.
type File struct {
	Regions []RegionDecl `yaml:"regions"`
}

// RegionDecl is one region's raw declaration before derivation.
type RegionDecl struct {
	Name          string       `yaml:"name"`
	SendInterval  string       `yaml:"send_interval"`
	MissThreshold int          `yaml:"miss_threshold"`
	KumaURL       string       `yaml:"kuma_url"`
	Groups        []GroupDecl  `yaml:"groups"`
}

// GroupDecl is one group's raw declaration before derivation.
type GroupDecl struct {
	Name          string   `yaml:"name"`
	FailThreshold int      `yaml:"fail_threshold"`
	Tests         []string `yaml:"tests"`
}

const (
	defaultSendInterval  = "10s"
	defaultMissThreshold = 3
	defaultFailThreshold = 3
	silenceSlackMs       = 1000
)

// Parse decodes raw YAML bytes into a File, applying defaults.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("regioncfg: parse yaml: %w", err)
	}
	for i := range f.Regions {
		if f.Regions[i].SendInterval == "" {
			f.Regions[i].SendInterval = defaultSendInterval
		}
		if f.Regions[i].MissThreshold == 0 {
			f.Regions[i].MissThreshold = defaultMissThreshold
		}
		for j := range f.Regions[i].Groups {
			if f.Regions[i].Groups[j].FailThreshold == 0 {
				f.Regions[i].Groups[j].FailThreshold = defaultFailThreshold
			}
		}
	}
	return &f, nil
}

// ParseMS parses a duration string in the dialect spec §6 documents:
// "20ms", "10s", "3m", "2h", or a bare integer (milliseconds). Negative
// values, floats, and unknown suffixes are rejected.
func ParseMS(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("regioncfg: empty duration")
	}

	unit := uint64(1)
	numPart := s

	switch {
	case strings.HasSuffix(s, "ms"):
		unit = 1
		numPart = strings.TrimSuffix(s, "ms")
	case strings.HasSuffix(s, "h"):
		unit = 3600_000
		numPart = strings.TrimSuffix(s, "h")
	case strings.HasSuffix(s, "m"):
		unit = 60_000
		numPart = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "s"):
		unit = 1000
		numPart = strings.TrimSuffix(s, "s")
	}

	if numPart == "" {
		return 0, fmt.Errorf("regioncfg: %q has no numeric part", s)
	}
	if strings.Contains(numPart, ".") {
		return 0, fmt.Errorf("regioncfg: %q is not an integer duration", s)
	}
	if strings.HasPrefix(numPart, "-") {
		return 0, fmt.Errorf("regioncfg: %q is negative", s)
	}

	n, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("regioncfg: %q: %w", s, err)
	}
	return n * unit, nil
}

// Derive expands a File into the RegionConfig set the state store and HTTP
// service consume, applying:
//   region.threshold_ms  = region.interval_ms * miss_threshold + 1000
//   group.threshold_ms   = region.interval_ms * group.fail_threshold + 1000
func Derive(f *File) ([]model.RegionConfig, error) {
	out := make([]model.RegionConfig, 0, len(f.Regions))
	for _, r := range f.Regions {
		intervalMs, err := ParseMS(r.SendInterval)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.Name, err)
		}
		if r.Name == "" {
			return nil, errors.New("regioncfg: region with empty name")
		}

		regionThreshold := intervalMs*uint64(r.MissThreshold) + silenceSlackMs

		groups := make([]model.GroupConfig, 0, len(r.Groups))
		for _, g := range r.Groups {
			if g.Name == "" {
				return nil, fmt.Errorf("region %q: group with empty name", r.Name)
			}
			groupThreshold := intervalMs*uint64(g.FailThreshold) + silenceSlackMs
			groups = append(groups, model.GroupConfig{
				Name:        g.Name,
				ThresholdMs: groupThreshold,
				Tests:       g.Tests,
			})
		}

		out = append(out, model.RegionConfig{
			Name:        r.Name,
			IntervalMs:  intervalMs,
			ThresholdMs: regionThreshold,
			KumaURL:     r.KumaURL,
			Groups:      groups,
		})
	}
	return out, nil
}

// Load reads, parses, and derives the full region set from raw YAML bytes in
// one call, for cmd/controller's startup path.
func Load(raw []byte) ([]model.RegionConfig, error) {
	f, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Derive(f)
}
