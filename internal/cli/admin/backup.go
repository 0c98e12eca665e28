package admin

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridianhq/docsearch/internal/config"
	"github.com/meridianhq/docsearch/internal/storage"
	"github.com/meridianhq/docsearch/internal/vectorstore"
)

const backupPrefix = "collections/"

// BackupCmd returns the backup command
func BackupCmd() *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up collections to S3",
		Long:  "Uploads collection database files to the configured S3-compatible bucket.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context(), collection)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Back up a single collection (default: all)")

	return cmd
}

// RestoreCmd returns the restore command
func RestoreCmd() *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore collections from S3",
		Long:  "Downloads collection database files from the configured S3-compatible bucket.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd.Context(), collection)
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "Restore a single collection (default: all)")

	return cmd
}

func runBackup(ctx context.Context, collection string) error {
	cfg, client, err := s3Setup(ctx)
	if err != nil {
		return err
	}

	store, err := vectorstore.Open(cfg.VectorDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.ListCollections()
	if err != nil {
		return err
	}
	if collection != "" {
		names = []string{collection}
	}
	if len(names) == 0 {
		log.Println("nothing to back up")
		return nil
	}

	for _, name := range names {
		path := store.CollectionPath(name)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("collection %q not found at %s", name, path)
		}
		key := backupPrefix + name + ".db"
		if err := client.UploadFile(ctx, key, path); err != nil {
			return err
		}
		log.Printf("backed up collection %q to s3://%s/%s", name, cfg.S3Bucket, key)
	}

	return nil
}

func runRestore(ctx context.Context, collection string) error {
	cfg, client, err := s3Setup(ctx)
	if err != nil {
		return err
	}

	prefix := backupPrefix
	if collection != "" {
		prefix = backupPrefix + collection + ".db"
	}

	keys, err := client.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no backups found under s3://%s/%s", cfg.S3Bucket, prefix)
	}

	if err := os.MkdirAll(cfg.VectorDBPath, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.VectorDBPath, err)
	}

	for _, key := range keys {
		name := strings.TrimPrefix(key, backupPrefix)
		if !strings.HasSuffix(name, ".db") || strings.Contains(name, "/") {
			continue
		}
		path := filepath.Join(cfg.VectorDBPath, name)
		if err := client.DownloadFile(ctx, key, path); err != nil {
			return err
		}
		log.Printf("restored collection %q to %s", strings.TrimSuffix(name, ".db"), path)
	}

	return nil
}

func s3Setup(ctx context.Context) (*config.Config, *storage.S3Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.HasS3() {
		return nil, nil, fmt.Errorf("S3 backup not configured: S3_ENDPOINT required")
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}

	return cfg, client, nil
}
