package testutil

import (
	"time"

	"gopkg.in/yaml.v3"
)

// producerLayout is the timestamp layout the capture module writes.
const producerLayout = "02-01-2006 15:04:05"

// Dataset describes one configuration entry.
type Dataset struct {
	Name        string
	First       string
	Last        string
	Granularity int
	TimeFirst   time.Time
	Interval    time.Duration
	Window      int
	// Offline, when set, adds the markers of a finished recording.
	Offline *Offline
}

// Offline holds the markers written when recording stops.
type Offline struct {
	Last      time.Time
	Intervals int
}

type yamlDataset struct {
	Addresses yamlAddresses `yaml:"addresses"`
	Time      yamlTime      `yaml:"time"`
	Module    yamlModule    `yaml:"module"`
}

type yamlAddresses struct {
	First       string `yaml:"first"`
	Last        string `yaml:"last"`
	Granularity int    `yaml:"granularity"`
}

type yamlTime struct {
	First       string `yaml:"first"`
	Granularity int    `yaml:"granularity"`
	Window      int    `yaml:"window"`
	Intervals   *int   `yaml:"intervals,omitempty"`
	Last        string `yaml:"last,omitempty"`
}

type yamlModule struct {
	Start string `yaml:"start"`
	End   string `yaml:"end,omitempty"`
}

// ConfigYAML renders datasets as the producer's configuration file.
func ConfigYAML(datasets ...Dataset) ([]byte, error) {
	doc := make(map[string]yamlDataset, len(datasets))
	for _, d := range datasets {
		y := yamlDataset{
			Addresses: yamlAddresses{First: d.First, Last: d.Last, Granularity: d.Granularity},
			Time: yamlTime{
				First:       d.TimeFirst.Format(producerLayout),
				Granularity: int(d.Interval / time.Second),
				Window:      d.Window,
			},
			Module: yamlModule{Start: d.TimeFirst.Format(producerLayout)},
		}
		if d.Offline != nil {
			intervals := d.Offline.Intervals
			y.Time.Intervals = &intervals
			y.Time.Last = d.Offline.Last.Format(producerLayout)
			y.Module.End = d.Offline.Last.Format(producerLayout)
		}
		doc[d.Name] = y
	}
	return yaml.Marshal(doc)
}
