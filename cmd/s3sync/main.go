package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/forgeworks/s3sync"
	"github.com/forgeworks/s3sync/internal/logging"
	"github.com/forgeworks/s3sync/synctypes"
)

func main() {
	var (
		workers   int
		dryRun    bool
		acl       string
		excludes  []string
		verbose   bool
		region    string
		endpoint  string
		pathStyle bool
	)

	rootCmd := &cobra.Command{
		Use:   "s3sync SOURCE s3://BUCKET[/PREFIX]",
		Short: "Sync local files to an S3 path, uploading only changed content",
		Long: `s3sync uploads a local file or directory tree to an S3 location.

Files whose S3 entity tag already matches the local content are skipped,
so repeated runs only transfer what changed. The sync is upload-only:
remote objects absent locally are never deleted.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			logging.SetDebug(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			source, destURI := args[0], args[1]

			dest, err := s3sync.ParseDestination(destURI)
			if err != nil {
				return err
			}

			clientOpts := []synctypes.Option{}
			if region != "" {
				clientOpts = append(clientOpts, s3sync.WithRegion(region))
			}
			if endpoint != "" {
				clientOpts = append(clientOpts, s3sync.WithEndpoint(endpoint))
			}
			if pathStyle {
				clientOpts = append(clientOpts, s3sync.WithForcePathStyle(true))
			}

			client, err := s3sync.New(clientOpts...)
			if err != nil {
				return err
			}

			syncOpts := []synctypes.SyncOption{
				s3sync.WithDryRun(dryRun),
				s3sync.WithParallelism(workers),
			}
			for _, pattern := range excludes {
				syncOpts = append(syncOpts, s3sync.WithExcludePattern(pattern))
			}
			if acl != "" {
				syncOpts = append(syncOpts, s3sync.WithACL(synctypes.ObjectACL(acl)))
			}

			result, err := client.Sync(cmd.Context(), source, dest, syncOpts...)
			if err != nil {
				return err
			}

			if len(result.Tasks) == 0 && result.Ok() {
				fmt.Println("All files are up to date.")
				return nil
			}

			fmt.Printf("Uploaded %d files (%s) in %s, %d up to date\n",
				result.FilesUploaded,
				humanize.Bytes(uint64(result.BytesUploaded)),
				result.Duration.Round(10*time.Millisecond),
				result.FilesUpToDate,
			)
			if !result.Ok() {
				for _, itemErr := range result.Errors {
					logging.Error("sync failed for "+itemErr.Key, itemErr.Err)
				}
				return fmt.Errorf("%d files failed to sync", result.FilesFailed)
			}
			return nil
		},
	}

	rootCmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of parallel uploads")
	rootCmd.Flags().BoolVar(&dryRun, "dryrun", false, "Plan and compare but do not upload")
	rootCmd.Flags().StringVar(&acl, "acl", "", "Canned ACL to apply to uploaded objects")
	rootCmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Exclude files/folders matching a glob pattern (repeatable)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVar(&region, "region", "", "AWS region of the destination bucket")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint URL")
	rootCmd.Flags().BoolVar(&pathStyle, "path-style", false, "Use path-style S3 addressing")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
