package service

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/propscore/leadscore/backend/config"
)

// LoadModelArtifact fetches the raw classifier artifact from the configured
// source. Called once at startup; a missing artifact degrades scoring to 503
// but must not stop the process, so callers treat the error as non-fatal.
func LoadModelArtifact(ctx context.Context, cfg *config.ModelConfig) ([]byte, error) {
	switch cfg.Source {
	case "s3":
		return loadArtifactFromS3(ctx, &cfg.S3)
	case "file", "":
		return os.ReadFile(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown model source %q", cfg.Source)
	}
}

func loadArtifactFromS3(ctx context.Context, cfg *config.S3Config) ([]byte, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	obj, err := client.GetObject(ctx, cfg.Bucket, cfg.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model artifact: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	return data, nil
}
