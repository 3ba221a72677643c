// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "captures", "ip-activity/")
//
//	engine, err := ipactivity.Open(ctx, store, ipactivity.WithDataset("subnet-a"))
//
// Blob sizes are taken from HeadObject at Open. Reads are ranged GetObject
// requests issued through the transfer manager's downloader and never go
// past that size, so objects the producer re-uploads in the meantime do not
// change a snapshot's length.
package s3
