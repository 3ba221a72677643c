// Package ipactivity reads and visualizes address × time activity bitmaps.
//
// A capture module records, for every time interval, which address buckets
// of a configured range showed traffic. It writes one packed bit row per
// interval into a ring buffer file and describes the dataset in a YAML
// configuration. ipactivity turns those files back into an address-major
// matrix, cuts selections out of it and renders it as a grayscale PNG.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	e, _ := ipactivity.Open(ctx, blobstore.NewLocalStore("/var/lib/ip_activity"))
//	b, _ := e.ReadBitmap(ctx, ipactivity.KindSource)  // bitmap_s.bmap
//	if b.NoData {
//	    // nothing recorded yet
//	}
//	img, _ := e.RenderBitmap(ctx, b, 2)
//	os.WriteFile("source.png", img.PNG, 0o644)
//
// Cloud mode:
//
//	store := s3.NewStore(awss3.NewFromConfig(awsCfg), "captures", "probe-1/")
//	e, _ := ipactivity.Open(ctx, store, ipactivity.WithDataset("probe-1"))
//
// # Datasets
//
// Each configuration entry describes one dataset: its address range and
// granularity, the length of one interval, the window size and, once the
// capture has stopped, the number of recorded intervals. A dataset is
// online while recording and offline afterwards; RefreshConfig picks up the
// switch and rejects the reverse.
//
// Every dataset has three bitmaps, one per Kind: source addresses,
// destination addresses and both. They are named "<filename>_s.bmap",
// "<filename>_d.bmap" and "<filename>_sd.bmap"; archived copies with a
// ".zst" or ".lz4" suffix are read transparently.
//
// # Coordinates
//
// Row i of a matrix is the address bucket i buckets above the matrix's
// first address; column j is the interval j intervals after its first
// time. Selections are re-based, so IndexAt, Cell and the matrix Origin
// work the same on a selection as on a full bitmap.
package ipactivity
