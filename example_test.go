package ipactivity_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/ipactivity"
	"github.com/hupe1980/ipactivity/blobstore"
	"github.com/hupe1980/ipactivity/testutil"
)

// Example_readBitmap reads the source bitmap of a running capture.
func Example_readBitmap() {
	ctx := context.Background()
	first := time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)

	// Emulate the capture module: 4 address buckets, 3 intervals recorded.
	store := blobstore.NewMemoryStore()
	cfg, err := testutil.ConfigYAML(testutil.Dataset{
		Name:        "bitmap",
		First:       "192.168.0.0",
		Last:        "192.168.4.0",
		Granularity: 24,
		TimeFirst:   first,
		Interval:    time.Minute,
		Window:      10,
	})
	if err != nil {
		log.Fatal(err)
	}
	store.Put("config.yaml", cfg)

	p := testutil.NewProducer(store, "bitmap_s.bmap", 4, 10)
	p.Record(0)
	p.Record(1, 3)
	p.Record(3)

	e, err := ipactivity.Open(ctx, store,
		ipactivity.WithLocation(time.UTC),
		ipactivity.WithClock(func() time.Time { return first.Add(3*time.Minute + time.Second) }),
	)
	if err != nil {
		log.Fatal(err)
	}

	b, err := e.ReadBitmap(ctx, ipactivity.KindSource)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(b.Matrix)

	c := e.Cell(b.Matrix, 3, 1)
	fmt.Println(c.Address, c.Time.Format(time.TimeOnly), c.State)
	// Output:
	// 100
	// 010
	// 000
	// 011
	// 192.168.3.0 12:01:00 active
}

// Example_indexAt translates bucket offsets into addresses and times.
func Example_indexAt() {
	ctx := context.Background()
	first := time.Date(2016, 5, 1, 12, 0, 0, 0, time.UTC)

	store := blobstore.NewMemoryStore()
	cfg, err := testutil.ConfigYAML(testutil.Dataset{
		Name:        "bitmap",
		First:       "10.0.0.0",
		Last:        "10.0.2.0",
		Granularity: 24,
		TimeFirst:   first,
		Interval:    5 * time.Minute,
		Window:      100,
		Offline:     &testutil.Offline{Last: first.Add(time.Hour), Intervals: 12},
	})
	if err != nil {
		log.Fatal(err)
	}
	store.Put("config.yaml", cfg)

	e, err := ipactivity.Open(ctx, store, ipactivity.WithLocation(time.UTC))
	if err != nil {
		log.Fatal(err)
	}

	a, _ := e.IndexAt(ipactivity.IndexQuery{Axis: ipactivity.AxisAddress, Offset: 1})
	t, _ := e.IndexAt(ipactivity.IndexQuery{Axis: ipactivity.AxisTime, Offset: 3})
	fmt.Println(a)
	fmt.Println(t)
	fmt.Println(e.Info(time.Now()).Mode)
	// Output:
	// 10.0.1.0
	// 2016-05-01 12:15:00
	// offline
}
