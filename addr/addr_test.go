package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		family Family
		want   string
	}{
		{"10.0.0.1", IPv4, "10.0.0.1"},
		{"0.0.0.0", IPv4, "0.0.0.0"},
		{"2001:db8::1", IPv6, "2001:db8::1"},
		{"::ffff:10.0.0.1", IPv6, "::ffff:10.0.0.1"},
		{"::", IPv6, "::"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.family, a.Family())
			assert.Equal(t, tt.want, a.String())
		})
	}

	for _, bad := range []string{"", "10.0.0", "fe80::1%eth0", "host"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, bad)
	}
}

func TestBucketIndex(t *testing.T) {
	first := MustParse("10.0.0.0")

	tests := []struct {
		name        string
		a           string
		granularity uint8
		want        int64
	}{
		{"same bucket", "10.0.0.255", 24, 0},
		{"third /24", "10.0.3.7", 24, 3},
		{"host granularity", "10.0.0.17", 32, 17},
		{"below first", "9.255.255.0", 24, -1},
		{"whole space", "200.1.2.3", 0, 0},
		{"/16", "10.5.0.0", 16, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BucketIndex(first, MustParse(tt.a), tt.granularity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucketIndex_IPv6(t *testing.T) {
	first := MustParse("2001:db8::")

	i, err := BucketIndex(first, MustParse("2001:db8:0:5::1"), 64)
	require.NoError(t, err)
	assert.Equal(t, int64(5), i)

	i, err = BucketIndex(first, MustParse("2001:db8::ff"), 120)
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)

	i, err = BucketIndex(first, MustParse("2001:db8::1:0"), 112)
	require.NoError(t, err)
	assert.Equal(t, int64(1), i)

	// Host-level distance across the whole space does not fit in int64.
	_, err = BucketIndex(MustParse("::"), MustParse("ffff::"), 128)
	assert.ErrorIs(t, err, ErrIndexOverflow)
}

func TestBucketIndex_Errors(t *testing.T) {
	_, err := BucketIndex(MustParse("10.0.0.0"), MustParse("10.0.0.1"), 33)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = BucketIndex(MustParse("::"), MustParse("::1"), 129)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = BucketIndex(MustParse("10.0.0.0"), MustParse("::1"), 24)
	assert.ErrorIs(t, err, ErrFamilyMismatch)
}

func TestAddressAt(t *testing.T) {
	first := MustParse("10.0.0.77")

	a, err := AddressAt(first, 3, 24)
	require.NoError(t, err)
	assert.Equal(t, "10.0.3.0", a.String())

	a, err = AddressAt(first, -1, 24)
	require.NoError(t, err)
	assert.Equal(t, "9.255.255.0", a.String())

	a, err = AddressAt(MustParse("2001:db8::"), 2, 64)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8:0:2::", a.String())

	_, err = AddressAt(MustParse("255.255.255.0"), 1, 24)
	assert.ErrorIs(t, err, ErrIndexOverflow)

	_, err = AddressAt(MustParse("0.0.0.0"), -1, 24)
	assert.ErrorIs(t, err, ErrIndexOverflow)

	_, err = AddressAt(first, 0, 40)
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		first       string
		granularity uint8
	}{
		{"10.0.0.0", 24},
		{"10.0.0.0", 32},
		{"192.168.0.0", 28},
		{"2001:db8::", 64},
		{"2001:db8::", 120},
		{"2001::", 16},
	}
	for _, c := range cases {
		first := MustParse(c.first)
		for i := int64(0); i < 1000; i++ {
			a, err := AddressAt(first, i, c.granularity)
			require.NoError(t, err)
			got, err := BucketIndex(first, a, c.granularity)
			require.NoError(t, err)
			require.Equal(t, i, got, "%s/%d index %d", c.first, c.granularity, i)
		}
	}
}

func TestRoundTrip_FamilyLimit(t *testing.T) {
	first := MustParse("fe80::")

	// fe80::/16 leaves 383 buckets above the first one.
	for i := int64(0); i <= 383; i++ {
		a, err := AddressAt(first, i, 16)
		require.NoError(t, err)
		got, err := BucketIndex(first, a, 16)
		require.NoError(t, err)
		require.Equal(t, i, got)
	}

	a, err := AddressAt(first, 383, 16)
	require.NoError(t, err)
	assert.Equal(t, "ffff::", a.String())

	_, err = AddressAt(first, 384, 16)
	assert.ErrorIs(t, err, ErrIndexOverflow)
}

func TestRoundTrip_Truncates(t *testing.T) {
	first := MustParse("10.0.0.0")
	a := MustParse("10.0.7.200")

	i, err := BucketIndex(first, a, 24)
	require.NoError(t, err)
	back, err := AddressAt(first, i, 24)
	require.NoError(t, err)

	masked, err := a.Mask(24)
	require.NoError(t, err)
	assert.Equal(t, masked, back)
	assert.Equal(t, "10.0.7.0", back.String())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, MustParse("10.0.0.1").Compare(MustParse("10.0.0.2")))
	assert.Equal(t, 0, MustParse("::1").Compare(MustParse("::1")))
	assert.Equal(t, 1, MustParse("2001:db8::2").Compare(MustParse("2001:db8::1")))
	assert.Equal(t, -1, MustParse("255.255.255.255").Compare(MustParse("::")))
}

func TestTextRoundTrip(t *testing.T) {
	var a Address
	require.NoError(t, a.UnmarshalText([]byte("2001:db8::5")))
	text, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::5", string(text))
}
