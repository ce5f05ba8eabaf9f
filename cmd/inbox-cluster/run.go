package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/di"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	since     string
	k         int
	maxEmails int
	user      string
	jsonOut   bool
	timeout   time.Duration
}

func newRunCmd(flags *di.CLIFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, cluster and summarize emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := parseSince(opts.since, time.Now())
			if err != nil {
				return err
			}
			// Without a user the run is not persisted
			flags.Ephemeral = opts.user == ""

			container, err := di.BuildCLIContainer(flags)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			return container.Invoke(func(
				logger *zap.Logger,
				service *core.ClusteringService,
				store ports.Store,
				summarizer core.Summarizer,
			) error {
				defer logger.Sync()
				defer store.Close()
				if closer, ok := summarizer.(io.Closer); ok {
					defer closer.Close()
				}

				req := core.RunRequest{Since: since, K: opts.k, MaxEmails: opts.maxEmails}
				ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
				defer cancel()

				if opts.user != "" {
					user, err := store.GetUserByEmail(ctx, opts.user)
					if err != nil {
						return fmt.Errorf("failed to find user %s: %w", opts.user, err)
					}
					req.UserID = user.ID
				}

				result, err := service.Run(ctx, req)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), result)
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flags.InputFile, "file", "f", "", "JSON email file (overrides the configured source)")
	cmd.Flags().StringVar(&flags.Provider, "provider", "", "Summarizer provider (none, extractive, openai, gemini, anthropic, bedrock)")
	cmd.Flags().StringVar(&opts.since, "since", "", "Only emails received on or after this date (YYYY-MM-DD, default 24h ago)")
	cmd.Flags().IntVarP(&opts.k, "clusters", "k", 0, "Number of clusters (default from config)")
	cmd.Flags().IntVar(&opts.maxEmails, "max-emails", 0, "Maximum number of emails to fetch (default from config)")
	cmd.Flags().StringVar(&opts.user, "user", "", "Store the clusters for this account email")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Maximum duration of the run")

	return cmd
}

// parseSince parses a YYYY-MM-DD date as UTC midnight. Empty means 24 hours before now.
func parseSince(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return now.Add(-24 * time.Hour), nil
	}
	since, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date format %q, use YYYY-MM-DD", core.ErrInvalidDate, value)
	}
	return since, nil
}

func writeJSON(w io.Writer, result *core.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// printResult prints the hourly report followed by one block per cluster
func printResult(w io.Writer, result *core.RunResult) {
	fmt.Fprintf(w, "Run %s: %d emails fetched, %d clustered into %d clusters\n",
		result.RunID, result.Fetched, len(result.Labels), len(result.Clusters))

	fmt.Fprintf(w, "\n=== Report ===\n")
	for _, row := range result.Report {
		fmt.Fprintf(w, "%s  cluster %d  %d\n", row.Bucket.Format("2006-01-02 15:04"), row.ClusterID, row.Count)
	}

	fmt.Fprintf(w, "\n=== Clusters ===\n")
	for _, c := range result.Clusters {
		fmt.Fprintf(w, "Cluster %d (%d emails)", c.ClusterID, c.Count)
		if len(c.Keywords) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(c.Keywords, ", "))
		}
		fmt.Fprintln(w)
		if c.Summary != "" {
			fmt.Fprintf(w, "  %s\n", c.Summary)
		}
	}
}
