package addr

import (
	"fmt"
	"math"
)

// BucketIndex returns the index of the /granularity bucket containing a,
// counted from the bucket containing first.
//
// Both addresses are shifted right by (bit width - granularity) and
// subtracted. The result is negative when a lies below first.
func BucketIndex(first, a Address, granularity uint8) (int64, error) {
	if first.family != a.family {
		return 0, fmt.Errorf("%w: %s and %s", ErrFamilyMismatch, first.family, a.family)
	}
	if err := checkGranularity(first.family, granularity); err != nil {
		return 0, err
	}

	shift := uint(first.BitWidth() - granularity)
	x := first.v.rsh(shift)
	y := a.v.rsh(shift)

	if y.cmp(x) >= 0 {
		d, _ := y.sub(x)
		if d.hi != 0 || d.lo > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s - %s at /%d", ErrIndexOverflow, a, first, granularity)
		}
		return int64(d.lo), nil
	}

	d, _ := x.sub(y)
	if d.hi != 0 || d.lo > 1<<63 {
		return 0, fmt.Errorf("%w: %s - %s at /%d", ErrIndexOverflow, a, first, granularity)
	}
	return -int64(d.lo), nil
}

// AddressAt returns the first address of the bucket index buckets away from
// the bucket containing first. It is the inverse of BucketIndex: the result
// is always bucket aligned, so
//
//	AddressAt(first, BucketIndex(first, a, g), g)
//
// yields a with its low (bit width - g) bits cleared.
func AddressAt(first Address, index int64, granularity uint8) (Address, error) {
	if !first.IsValid() {
		return Address{}, ErrInvalidAddress
	}
	if err := checkGranularity(first.family, granularity); err != nil {
		return Address{}, err
	}

	shift := uint(first.BitWidth() - granularity)
	base := first.v.rsh(shift)

	var (
		bucket   uint128
		overflow bool
	)
	if index >= 0 {
		bucket, overflow = base.add(uint128{lo: uint64(index)})
	} else {
		bucket, overflow = base.sub(uint128{lo: uint64(-(index + 1)) + 1})
	}
	if overflow || !bucket.fitsBits(uint(granularity)) {
		return Address{}, fmt.Errorf("%w: bucket %d from %s at /%d", ErrIndexOverflow, index, first, granularity)
	}

	return Address{v: bucket.lsh(shift), family: first.family}, nil
}
