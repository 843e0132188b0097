// Command purge runs one retention sweep over the verifications table.
// It is meant to be scheduled (cron, EventBridge) next to the API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/customer-intake-api/internal/application/retention"
	"github.com/customer-intake-api/internal/config"
	"github.com/customer-intake-api/internal/infrastructure/dynamo"
	s3infra "github.com/customer-intake-api/internal/infrastructure/s3"
	"github.com/customer-intake-api/internal/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	cmd := &cli.Command{
		Name:  "purge",
		Usage: "Archive and delete verification records past their retention period",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "batch-size",
				Value:   retention.DefaultBatchSize,
				Usage:   "Maximum records handled in one run",
				Sources: cli.EnvVars("PURGE_BATCH_SIZE"),
			},
			&cli.BoolFlag{
				Name:    "archive",
				Value:   cfg.ArchiveEnabled,
				Usage:   "Write records to S3 before deleting them",
				Sources: cli.EnvVars("ARCHIVE_ENABLED"),
			},
			&cli.BoolFlag{
				Name:  "bootstrap",
				Usage: "Create missing tables before sweeping",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(ctx, cfg, c)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("purge failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, c *cli.Command) error {
	client := dynamo.NewClient(cfg)
	if c.Bool("bootstrap") {
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
	}

	deps := retention.ServiceDeps{
		Repo:      dynamo.NewVerificationRepo(client, cfg.DynamoTables.Verifications),
		BatchSize: int(c.Int("batch-size")),
	}
	if c.Bool("archive") {
		store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)
		deps.Archive = s3infra.NewVerificationArchive(store)
	}

	res, err := retention.NewService(deps).Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("scanned=%d archived=%d deleted=%d %s\n", res.Scanned, res.Archived, res.Deleted, res.Archive)
	return nil
}
