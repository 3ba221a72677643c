// Package minio provides a BlobStore implementation using the MinIO client.
//
// It serves bitmap datasets that a producer mirrors into MinIO or another
// S3-compatible service (Ceph, Garage, SeaweedFS) without pulling in the
// AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "captures", "ip-activity/")
//	engine, err := ipactivity.Open(ctx, store, ipactivity.WithDataset("subnet-a"))
package minio
