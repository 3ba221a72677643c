// Package testutil emulates the bitmap producer for tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Producer
//
//	store := blobstore.NewMemoryStore()
//	p := testutil.NewProducer(store, "subnet_s.bmap", 20, 8)
//	p.Record(0, 3, 19) // one interval, three active address buckets
//	want := p.Expected() // oldest interval first, as the store decodes it
//
// # Configuration
//
//	ds := testutil.Dataset{Name: "subnet", First: "10.0.0.0", Last: "10.0.20.0", ...}
//	data, err := testutil.ConfigYAML(ds)
package testutil
