package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/snapshot"
)

func snapshotCmd(flags *globalFlags) *cobra.Command {
	var (
		name    string
		bucket  string
		dir     string
		cleanup time.Duration
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the demo and store a snapshot",
		Long: `Render the demo document and store it as <name>-<unix>.html.

Snapshots go to S3 when a bucket is configured (snapshot.bucket or
--bucket, credentials from the AWS environment) and to the snapshot
directory otherwise.

Examples:
  vbind snapshot
  vbind snapshot --name=profile --dir=out
  vbind snapshot --bucket=my-previews
  vbind snapshot --cleanup=168h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Snapshot.Bucket = bucket
			}
			if dir != "" {
				cfg.Snapshot.Dir = dir
				cfg.Snapshot.Bucket = ""
			}

			ctx := cmd.Context()
			store, disk, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			d, err := buildDocument(ctx, cfg, logger, nil, nil)
			if err != nil {
				return err
			}

			loc, err := snapshot.Take(ctx, store, d.doc, name)
			if err != nil {
				return errors.New("L001").Wrap(err)
			}
			success("Stored %s", loc)

			if cleanup > 0 && disk != nil {
				if err := disk.Cleanup(cleanup); err != nil {
					return errors.New("L002").Wrap(err)
				}
				info("Removed snapshots older than %s", cleanup)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "demo", "Snapshot name")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from vbind.json)")
	cmd.Flags().StringVar(&dir, "dir", "", "Snapshot directory (default from vbind.json)")
	cmd.Flags().DurationVar(&cleanup, "cleanup", 0, "Remove disk snapshots older than this")

	return cmd
}

// openStore selects the S3 store when a bucket is configured. disk is nil
// for S3.
func openStore(ctx context.Context, cfg *config.Config) (store snapshot.Store, disk *snapshot.DiskStore, err error) {
	if cfg.Snapshot.Bucket != "" {
		s3, err := snapshot.NewS3StoreFromEnv(ctx, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix, cfg.Snapshot.Region)
		if err != nil {
			return nil, nil, errors.New("L002").Wrap(err)
		}
		return s3, nil, nil
	}
	disk, err = snapshot.NewDiskStore(cfg.SnapshotPath())
	if err != nil {
		return nil, nil, errors.New("L002").Wrap(err)
	}
	return disk, disk, nil
}
