package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/exports"
	"github.com/guideline-analyzer/backend/pkg/config"
	"github.com/guideline-analyzer/backend/pkg/utils"
)

var exportFlags struct {
	driver   string
	dir      string
	bucket   string
	region   string
	endpoint string
	prefix   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the complete dataset and every download as CSV to an export store",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.driver, "driver", exports.DriverFS, "Export store: fs, s3 or memory")
	f.StringVar(&exportFlags.dir, "dir", "downloads", "Root directory for the fs driver")
	f.StringVar(&exportFlags.bucket, "bucket", "", "Bucket for the s3 driver")
	f.StringVar(&exportFlags.region, "region", "us-east-1", "Region for the s3 driver")
	f.StringVar(&exportFlags.endpoint, "endpoint", "", "Custom S3 endpoint (path-style addressing is used when set)")
	f.StringVar(&exportFlags.prefix, "prefix", "exports", "Key prefix")
}

func runExport(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	fingerprint, err := fileFingerprint(rootFlags.file)
	if err != nil {
		return err
	}

	store, err := exports.Open(cmd.Context(), config.ExportsConfig{
		Driver:    exportFlags.driver,
		Bucket:    exportFlags.bucket,
		Region:    exportFlags.region,
		Endpoint:  exportFlags.endpoint,
		PathStyle: exportFlags.endpoint != "",
	}, exportFlags.dir)
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}

	manifest, err := exports.NewPublisher(store, exportFlags.prefix).Publish(cmd.Context(), ds, fingerprint)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exported %d files to %s %s\n", len(manifest.Objects), store.Driver(), manifest.Prefix)
	for _, obj := range manifest.Objects {
		fmt.Fprintf(out, "  %s (%d bytes)\n", obj.Key, obj.Size)
	}
	return nil
}

func fileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return utils.HashReader(f)
}
