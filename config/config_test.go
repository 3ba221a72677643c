package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/blobstore"
)

const online = `
subnet:
  addresses:
    first: 10.0.0.0
    last: 10.0.20.0
    granularity: 24
  time:
    first: 01-05-2016 12:00:00
    granularity: 300
    window: 100
  module:
    start: true
`

const offline = `
subnet:
  addresses:
    first: 10.0.0.0
    last: 10.0.20.0
    granularity: 24
  time:
    first: 2016-05-01 12:00:00
    granularity: 300
    window: 100
    intervals: 150
    last: 2016-05-01 23:30:00
  module:
    start: true
    end: true
`

var first = time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParse_Online(t *testing.T) {
	c, err := Parse([]byte(online), "subnet", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "subnet", c.Dataset)
	assert.Equal(t, Online, c.Mode)
	assert.Equal(t, "10.0.0.0", c.Addresses.First.String())
	assert.Equal(t, uint8(24), c.Addresses.Granularity)
	assert.Equal(t, 20, c.VectorSize())
	assert.Equal(t, 3, c.ByteVectorSize())
	assert.True(t, first.Equal(c.Time.First))
	assert.Equal(t, 5*time.Minute, c.Time.Interval)
	assert.Equal(t, 100, c.Time.Window)

	now := first.Add(time.Hour + time.Minute)
	assert.Equal(t, 12, c.Intervals(now))
	assert.Equal(t, 12, c.StoredIntervals(now))
	assert.Equal(t, now, c.Last(now))
	assert.True(t, first.Equal(c.WindowFirst(now)))

	assert.Equal(t, 0, c.Intervals(first.Add(-time.Hour)))

	later := first.Add(150 * 5 * time.Minute)
	assert.Equal(t, 150, c.Intervals(later))
	assert.Equal(t, 100, c.StoredIntervals(later))
	assert.True(t, first.Add(50*5*time.Minute).Equal(c.WindowFirst(later)))
}

func TestParse_Offline(t *testing.T) {
	c, err := Parse([]byte(offline), "subnet", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, Offline, c.Mode)
	assert.Equal(t, 150, c.Intervals(time.Now()))
	assert.Equal(t, 100, c.StoredIntervals(time.Now()))
	assert.True(t, time.Date(2016, 5, 1, 23, 30, 0, 0, time.UTC).Equal(c.Last(time.Now())))
	assert.Equal(t, "true", c.Module.End)
}

func TestParse_UnrelatedDatasetIgnored(t *testing.T) {
	doc := online + `
other:
  addresses: nonsense
`
	_, err := Parse([]byte(doc), "subnet", time.UTC)
	require.NoError(t, err)

	_, err = Parse([]byte(doc), "other", time.UTC)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		dataset string
		want    error
	}{
		{"missing dataset", online, "nope", ErrMissingDataset},
		{"malformed yaml", "a: [", "a", ErrInvalid},
		{"missing field", `
subnet:
  addresses: {first: 10.0.0.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"missing group", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.1.0, granularity: 24}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"partial offline markers", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10, intervals: 5}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"undefined last counts as absent", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10, intervals: 5, last: undefined}
  module: {start: true, end: true}
`, "subnet", ErrInvalid},
		{"bad address", `
subnet:
  addresses: {first: 10.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"granularity too large", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 33}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", addr.ErrInvalidGranularity},
		{"mixed families", `
subnet:
  addresses: {first: 10.0.0.0, last: "::1", granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", addr.ErrFamilyMismatch},
		{"empty range", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.0.255, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"inverted range", `
subnet:
  addresses: {first: 10.0.5.0, last: 10.0.0.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"vector too large", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.255.0.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"zero interval", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 0, window: 10}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"interval too long", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 86401, window: 10}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"window too large", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 1001}
  module: {start: true}
`, "subnet", ErrInvalidRange},
		{"non-integer window", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: lots}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"bad timestamp", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: yesterday, granularity: 300, window: 10}
  module: {start: true}
`, "subnet", ErrInvalid},
		{"negative intervals", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10, intervals: -1, last: 2016-05-01 13:00:00}
  module: {start: true, end: true}
`, "subnet", ErrInvalidRange},
		{"last before first", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10, intervals: 1, last: 2016-05-01 11:00:00}
  module: {start: true, end: true}
`, "subnet", ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.dataset, time.UTC)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFieldError(t *testing.T) {
	_, err := Parse([]byte(`
subnet:
  addresses: {first: 10.0.0.0, granularity: 24}
  time: {first: 2016-05-01 12:00:00, granularity: 300, window: 10}
  module: {}
`), "subnet", time.UTC)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "subnet", fe.Path)
	assert.Contains(t, fe.Reason, "addresses.last")
	assert.Contains(t, fe.Reason, "module.start")
}

func TestParse_IPv6(t *testing.T) {
	c, err := Parse([]byte(`
v6:
  addresses: {first: "2001:db8::", last: "2001:db8:0:200::", granularity: 56}
  time: {first: 2016-05-01 12:00:00, granularity: 60, window: 1000}
  module: {start: true}
`), "v6", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, c.VectorSize())
	assert.Equal(t, 1, c.ByteVectorSize())
	assert.True(t, c.Addresses.First.Is6())
}

func TestRefresh(t *testing.T) {
	on, err := Parse([]byte(online), "subnet", time.UTC)
	require.NoError(t, err)
	off, err := Parse([]byte(offline), "subnet", time.UTC)
	require.NoError(t, err)

	tr, err := on.Refresh(on)
	require.NoError(t, err)
	assert.Equal(t, TransitionNone, tr)

	tr, err = on.Refresh(off)
	require.NoError(t, err)
	assert.Equal(t, TransitionOnlineToOffline, tr)
	assert.Equal(t, "online->offline", tr.String())

	tr, err = off.Refresh(off)
	require.NoError(t, err)
	assert.Equal(t, TransitionNone, tr)

	_, err = off.Refresh(on)
	assert.ErrorIs(t, err, ErrModeRegression)
	assert.Equal(t, Offline, off.Mode)

	_, err = on.Refresh(nil)
	assert.ErrorIs(t, err, ErrInvalid)

	other := *on
	other.Dataset = "other"
	_, err = on.Refresh(&other)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("config.yaml", []byte(online))

	c, err := Load(context.Background(), store, "config.yaml", "subnet", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 20, c.VectorSize())

	_, err = Load(context.Background(), store, "missing.yaml", "subnet", time.UTC)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestParse_FlowMappings(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		mode Mode
	}{
		{"online", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time:      {first: "2016-05-01 12:00:00", granularity: 300,
              window: 10}
  module:    {start: true}
`, Online},
		{"online with undefined last and null end", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time:      {first: "2016-05-01 12:00:00", granularity: 300,
              window: 10, last: undefined}
  module:    {start: true, end: ~}
`, Online},
		{"offline", `
subnet:
  addresses: {first: 10.0.0.0, last: 10.0.20.0, granularity: 24}
  time:      {first: "2016-05-01 12:00:00", granularity: 300,
              window: 10, intervals: 12, last: "2016-05-01 13:00:00"}
  module:    {start: true, end: true}
`, Offline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.doc), "subnet", time.UTC)
			require.NoError(t, err)

			assert.Equal(t, tt.mode, c.Mode)
			assert.Equal(t, "10.0.20.0", c.Addresses.Last.String())
			assert.Equal(t, 20, c.VectorSize())
			assert.True(t, first.Equal(c.Time.First))
			assert.Equal(t, 10, c.Time.Window)
			assert.Equal(t, "true", c.Module.Start)
		})
	}
}
