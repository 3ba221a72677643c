// Package addr maps network addresses to address-bucket indices and back.
//
// An Address carries its family (IPv4 or IPv6) from the moment it is
// parsed; arithmetic always uses the family's real bit width (32 or 128).
// A granularity is a prefix length: two addresses share a bucket when they
// agree on their first granularity bits.
//
//	first := addr.MustParse("10.0.0.0")
//	i, _ := addr.BucketIndex(first, addr.MustParse("10.0.3.7"), 24) // 3
//	a, _ := addr.AddressAt(first, i, 24)                           // 10.0.3.0
package addr
