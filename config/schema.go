package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the configuration source: one entry per dataset. Entries are
// decoded lazily so that unrelated datasets cannot break each other.
type document map[string]yaml.Node

// rawDataset mirrors the YAML layout written by the producer. Every leaf is
// kept as a node value so presence can be told apart from a zero value; an
// absent key leaves the node zero.
type rawDataset struct {
	Addresses *rawAddresses `yaml:"addresses"`
	Time      *rawTime      `yaml:"time"`
	Module    *rawModule    `yaml:"module"`
}

type rawAddresses struct {
	First       yaml.Node `yaml:"first"`
	Last        yaml.Node `yaml:"last"`
	Granularity yaml.Node `yaml:"granularity"`
}

type rawTime struct {
	First       yaml.Node `yaml:"first"`
	Granularity yaml.Node `yaml:"granularity"`
	Window      yaml.Node `yaml:"window"`
	Intervals   yaml.Node `yaml:"intervals"`
	Last        yaml.Node `yaml:"last"`
}

type rawModule struct {
	Start yaml.Node `yaml:"start"`
	End   yaml.Node `yaml:"end"`
}

func present(n *yaml.Node) bool {
	return n != nil && n.Kind == yaml.ScalarNode && n.Tag != "!!null"
}

func scalar(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

func intField(path string, n *yaml.Node) (int, error) {
	v, err := strconv.Atoi(scalar(n))
	if err != nil {
		return 0, &FieldError{Path: path, Reason: fmt.Sprintf("expected integer, got %q", scalar(n))}
	}
	return v, nil
}

// missingFields returns the dotted paths of required fields that are absent.
func (d *rawDataset) missingFields() []string {
	var missing []string
	if d.Addresses == nil {
		missing = append(missing, "addresses")
	} else {
		for _, f := range []struct {
			name string
			node *yaml.Node
		}{
			{"addresses.first", &d.Addresses.First},
			{"addresses.last", &d.Addresses.Last},
			{"addresses.granularity", &d.Addresses.Granularity},
		} {
			if !present(f.node) {
				missing = append(missing, f.name)
			}
		}
	}
	if d.Time == nil {
		missing = append(missing, "time")
	} else {
		for _, f := range []struct {
			name string
			node *yaml.Node
		}{
			{"time.first", &d.Time.First},
			{"time.granularity", &d.Time.Granularity},
			{"time.window", &d.Time.Window},
		} {
			if !present(f.node) {
				missing = append(missing, f.name)
			}
		}
	}
	if d.Module == nil {
		missing = append(missing, "module")
	} else if !present(&d.Module.Start) {
		missing = append(missing, "module.start")
	}
	return missing
}
