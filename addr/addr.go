package addr

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	// ErrInvalidAddress is returned when a string is not an IPv4 or IPv6 address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidGranularity is returned when a prefix length exceeds the
	// bit width of the address family.
	ErrInvalidGranularity = errors.New("invalid granularity")

	// ErrFamilyMismatch is returned when two addresses of different families
	// are combined.
	ErrFamilyMismatch = errors.New("address family mismatch")

	// ErrIndexOverflow is returned when an index or an address falls outside
	// the representable range.
	ErrIndexOverflow = errors.New("index overflow")
)

// Family identifies the address family of an Address.
type Family uint8

const (
	// IPv4 addresses are 32 bits wide.
	IPv4 Family = iota + 1
	// IPv6 addresses are 128 bits wide.
	IPv6
)

// BitWidth returns the number of bits of an address in the family.
func (f Family) BitWidth() uint8 {
	switch f {
	case IPv4:
		return 32
	case IPv6:
		return 128
	}
	return 0
}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return "unknown"
}

// Address is a network address tagged with its family.
//
// The family is decided once when the address is parsed and never
// re-detected. The zero value is invalid.
type Address struct {
	v      uint128
	family Family
}

// V4 returns an IPv4 address from its 32-bit integer value.
func V4(v uint32) Address {
	return Address{v: uint128{lo: uint64(v)}, family: IPv4}
}

// V6 returns an IPv6 address from the high and low 64 bits of its value.
func V6(hi, lo uint64) Address {
	return Address{v: uint128{hi: hi, lo: lo}, family: IPv6}
}

// Parse parses an IPv4 or IPv6 address in its textual form.
//
// An IPv4-mapped IPv6 address such as "::ffff:10.0.0.1" stays IPv6.
func Parse(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	if ip.Zone() != "" {
		return Address{}, fmt.Errorf("%w: %q: zones are not supported", ErrInvalidAddress, s)
	}
	return FromNetIP(ip), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromNetIP converts a netip.Addr. The zero netip.Addr yields the zero Address.
func FromNetIP(ip netip.Addr) Address {
	switch {
	case ip.Is4():
		b := ip.As4()
		return V4(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	case ip.Is6():
		b := ip.As16()
		var hi, lo uint64
		for i := 0; i < 8; i++ {
			hi = hi<<8 | uint64(b[i])
			lo = lo<<8 | uint64(b[i+8])
		}
		return V6(hi, lo)
	}
	return Address{}
}

// NetIP converts the address back to a netip.Addr.
func (a Address) NetIP() netip.Addr {
	switch a.family {
	case IPv4:
		v := uint32(a.v.lo)
		return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	case IPv6:
		var b [16]byte
		for i := 0; i < 8; i++ {
			b[7-i] = byte(a.v.hi >> (8 * i))
			b[15-i] = byte(a.v.lo >> (8 * i))
		}
		return netip.AddrFrom16(b)
	}
	return netip.Addr{}
}

// Family returns the address family.
func (a Address) Family() Family { return a.family }

// BitWidth returns 32 for IPv4 and 128 for IPv6.
func (a Address) BitWidth() uint8 { return a.family.BitWidth() }

// IsValid reports whether the address has been initialized.
func (a Address) IsValid() bool { return a.family == IPv4 || a.family == IPv6 }

// Is4 reports whether a is an IPv4 address.
func (a Address) Is4() bool { return a.family == IPv4 }

// Is6 reports whether a is an IPv6 address.
func (a Address) Is6() bool { return a.family == IPv6 }

// Compare returns -1, 0 or 1. Addresses of different families are ordered
// IPv4 first.
func (a Address) Compare(b Address) int {
	if a.family != b.family {
		if a.family < b.family {
			return -1
		}
		return 1
	}
	return a.v.cmp(b.v)
}

// Mask returns the first address of the /granularity bucket containing a.
func (a Address) Mask(granularity uint8) (Address, error) {
	if err := checkGranularity(a.family, granularity); err != nil {
		return Address{}, err
	}
	shift := uint(a.BitWidth() - granularity)
	return Address{v: a.v.rsh(shift).lsh(shift), family: a.family}, nil
}

func (a Address) String() string {
	if !a.IsValid() {
		return "invalid"
	}
	return a.NetIP().String()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return []byte{}, nil
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func checkGranularity(f Family, granularity uint8) error {
	if granularity > f.BitWidth() {
		return fmt.Errorf("%w: /%d exceeds %d bits of %s", ErrInvalidGranularity, granularity, f.BitWidth(), f)
	}
	return nil
}
