package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient connects to the image store and makes sure the plant image
// bucket exists and is publicly readable, since plant responses carry the
// object URL verbatim.
func NewMinIOClient(cfg *Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinIOBucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinIOBucket, err)
		}
		log.Printf("Created MinIO bucket: %s", cfg.MinIOBucket)
	}

	if err := client.SetBucketPolicy(ctx, cfg.MinIOBucket, publicReadPolicy(cfg.MinIOBucket)); err != nil {
		log.Printf("Warning: Failed to set bucket policy: %v", err)
	}

	return client, nil
}

func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": map[string][]string{"AWS": {"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{"arn:aws:s3:::" + bucket + "/plant-*"},
			},
		},
	}
	policyJSON, _ := json.Marshal(policy)
	return string(policyJSON)
}
