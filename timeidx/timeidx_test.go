package timeidx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketIndex(t *testing.T) {
	first := time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)
	interval := 300 * time.Second

	tests := []struct {
		name string
		t    time.Time
		want int64
	}{
		{"at first", first, 0},
		{"inside first", first.Add(299 * time.Second), 0},
		{"boundary", first.Add(300 * time.Second), 1},
		{"later", first.Add(time.Hour), 12},
		{"just before", first.Add(-time.Second), -1},
		{"exact negative", first.Add(-600 * time.Second), -2},
		{"negative inside", first.Add(-601 * time.Second), -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketIndex(first, tt.t, interval))
		})
	}
}

func TestTimeAt(t *testing.T) {
	first := time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, first.Add(25*time.Minute), TimeAt(first, 5, 5*time.Minute))
	assert.Equal(t, first.Add(-5*time.Minute), TimeAt(first, -1, 5*time.Minute))

	for i := int64(-20); i < 20; i++ {
		assert.Equal(t, i, BucketIndex(first, TimeAt(first, i, time.Minute), time.Minute))
	}
}

func TestParse(t *testing.T) {
	want := time.Date(2016, 5, 1, 12, 30, 15, 0, time.UTC)

	for _, s := range []string{"2016-05-01 12:30:15", "01-05-2016 12:30:15", " 2016-05-01 12:30:15 ", "2016-05-01T12:30:15Z"} {
		got, err := Parse(s, time.UTC)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := Parse("yesterday", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	assert.Equal(t, "2016-05-01 12:30:15", Format(want))
}

func TestIsUndefined(t *testing.T) {
	assert.True(t, IsUndefined("undefined"))
	assert.True(t, IsUndefined(""))
	assert.False(t, IsUndefined("2016-05-01 12:30:15"))
}

func TestCheckInterval(t *testing.T) {
	assert.NoError(t, CheckInterval(time.Second))
	assert.ErrorIs(t, CheckInterval(0), ErrInvalidInterval)
}
