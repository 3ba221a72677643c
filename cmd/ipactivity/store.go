package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/pflag"

	"github.com/hupe1980/ipactivity"
	"github.com/hupe1980/ipactivity/blobstore"
	miniostore "github.com/hupe1980/ipactivity/blobstore/minio"
	s3store "github.com/hupe1980/ipactivity/blobstore/s3"
)

// storeFlags select where configuration and bitmaps are read from.
type storeFlags struct {
	backend  string
	dir      string
	config   string
	filename string
	bucket   string
	prefix   string
	endpoint string
	region   string
	insecure bool
}

func (s *storeFlags) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.backend, "store", "local", "storage backend: local, s3 or minio")
	fs.StringVarP(&s.dir, "dir", "d", ".", "directory with the configuration and bitmaps (local store)")
	fs.StringVarP(&s.config, "config", "c", ipactivity.DefaultConfigName, "configuration file name")
	fs.StringVarP(&s.filename, "filename", "f", ipactivity.DefaultFilename, "bitmap base name, files are <filename>_<kind>.bmap")
	fs.StringVar(&s.bucket, "bucket", "", "bucket (s3 and minio stores)")
	fs.StringVar(&s.prefix, "prefix", "", "key prefix inside the bucket")
	fs.StringVar(&s.endpoint, "endpoint", "", "endpoint (required for minio, optional for s3)")
	fs.StringVar(&s.region, "region", "", "AWS region (s3 store)")
	fs.BoolVar(&s.insecure, "insecure", false, "use plain HTTP (minio store)")
}

func (s *storeFlags) open(ctx context.Context) (blobstore.BlobStore, error) {
	switch s.backend {
	case "local":
		return blobstore.NewLocalStore(s.dir), nil
	case "s3":
		if s.bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the s3 store")
		}
		var optFns []func(*awsconfig.LoadOptions) error
		if s.region != "" {
			optFns = append(optFns, awsconfig.WithRegion(s.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load AWS configuration: %w", err)
		}
		client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
			if s.endpoint != "" {
				o.BaseEndpoint = aws.String(s.endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, s.bucket, s.prefix), nil
	case "minio":
		if s.bucket == "" || s.endpoint == "" {
			return nil, fmt.Errorf("--bucket and --endpoint are required for the minio store")
		}
		client, err := minio.New(s.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: !s.insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, s.bucket, s.prefix), nil
	}
	return nil, fmt.Errorf("unknown store %q", s.backend)
}
