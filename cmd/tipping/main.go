// Command tipping is the operator CLI for the batch jobs.
//
// Usage:
//
//	tipping fixtures sync
//	tipping stats update --skip-fixtures
//	tipping tips autofill --match-ids 1,2
//	tipping tips export --output tips.csv --upload
//	tipping users create --username alice --name "Alice"
//	tipping users clear --yes
//	tipping report generate --match 3
//	tipping picker run --match-ids 3,4
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/footy-tipping/internal/analyst"
	"github.com/albapepper/footy-tipping/internal/archive"
	"github.com/albapepper/footy-tipping/internal/config"
	"github.com/albapepper/footy-tipping/internal/db"
	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/logging"
	"github.com/albapepper/footy-tipping/internal/provider"
	"github.com/albapepper/footy-tipping/internal/store"
	"github.com/albapepper/footy-tipping/internal/tips"
	"github.com/albapepper/footy-tipping/internal/validate"
	"github.com/albapepper/footy-tipping/internal/window"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "tipping",
		Short:        "Footy tipping operator CLI",
		SilenceUsage: true,
	}

	root.AddCommand(fixturesCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(tipsCmd())
	root.AddCommand(usersCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(pickerCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command gets from runJob.
type env struct {
	cfg   *config.Config
	store *store.SQLStore
	tips  *tips.Service
}

// runJob handles config loading, DB connection, migration and context
// cancellation.
func runJob(fn func(ctx context.Context, e *env) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = logging.New(cfg)

	st, closeDB, err := db.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer closeDB()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	policy := window.New(window.DefaultConfig(cfg.Location()))
	return fn(ctx, &env{cfg: cfg, store: st, tips: tips.NewService(st, policy, nil, logger)})
}

func newAnalyst(cfg *config.Config) *analyst.Analyst {
	client := analyst.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, 60, logger)
	return analyst.New(client, analyst.Options{
		Competition: config.CompetitionName,
		SearchCount: cfg.ReportSearchCount,
		Location:    cfg.Location(),
	}, logger)
}

func syncFixtures(ctx context.Context, e *env) error {
	feed := provider.NewClient(e.cfg.FixturesFeedURL, 30, logger)
	_, err := fixture.Sync(ctx, feed, e.store, logger)
	return err
}

// --------------------------------------------------------------------------
// fixtures command
// --------------------------------------------------------------------------

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Manage the fixture list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Fetch the draw and results from the fixture feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(syncFixtures)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print stored fixtures and the current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				all, err := e.store.ListFixtures(ctx)
				if err != nil {
					return err
				}
				for _, f := range all {
					fmt.Fprintln(cmd.OutOrStdout(), fixture.Summary(f))
				}
				if round, ok := fixture.CurrentRound(all, time.Now()); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "current round: %d\n", round)
				}
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// stats command
// --------------------------------------------------------------------------

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Maintain per-user tip tallies",
	}

	var skipFixtures bool
	update := &cobra.Command{
		Use:   "update",
		Short: "Sync results then recompute total and correct tips per user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				if !skipFixtures {
					if err := syncFixtures(ctx, e); err != nil {
						return err
					}
				}
				n, err := e.tips.UpdateStats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated tip stats for %d users.\n", n)
				return nil
			})
		},
	}
	update.Flags().BoolVar(&skipFixtures, "skip-fixtures", false, "Skip the fixture/result sync before recomputing")
	cmd.AddCommand(update)
	return cmd
}

// --------------------------------------------------------------------------
// tips command
// --------------------------------------------------------------------------

func tipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Operator jobs on tips",
	}

	var matchIDs []string
	autofill := &cobra.Command{
		Use:   "autofill",
		Short: "Give users without a tip the away team for current round matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				res, err := e.tips.AutoAssign(ctx, matchIDs)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
				return nil
			})
		},
	}
	autofill.Flags().StringSliceVar(&matchIDs, "match-ids", nil, "Only these match ids (comma separated)")

	var output string
	var upload bool
	export := &cobra.Command{
		Use:   "export",
		Short: "Export every tip as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				var buf bytes.Buffer
				n, err := e.tips.ExportCSV(ctx, &buf)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					cmd.OutOrStdout().Write(buf.Bytes())
				} else {
					if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
						return fmt.Errorf("write %s: %w", output, err)
					}
					logger.Info("Tips exported", "rows", n, "file", output)
				}
				if !upload {
					return nil
				}
				if !e.cfg.ExportUploadEnabled() {
					return fmt.Errorf("EXPORT_BUCKET, EXPORT_ACCESS_KEY_ID and EXPORT_SECRET_ACCESS_KEY are required for --upload")
				}
				up, err := archive.New(ctx, archive.Config{
					Bucket:          e.cfg.ExportBucket,
					Endpoint:        e.cfg.ExportEndpoint,
					Region:          e.cfg.ExportRegion,
					AccessKeyID:     e.cfg.ExportAccessKeyID,
					SecretAccessKey: e.cfg.ExportSecretAccessKey,
				}, logger)
				if err != nil {
					return err
				}
				_, err = up.Upload(ctx, archive.ExportKey(time.Now()), buf.Bytes(), "text/csv")
				return err
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "tips_export.csv", "Output file, - for stdout")
	export.Flags().BoolVar(&upload, "upload", false, "Also upload the export to the configured bucket")

	cmd.AddCommand(autofill, export)
	return cmd
}

// --------------------------------------------------------------------------
// users command
// --------------------------------------------------------------------------

// newUser is validated before insert.
type newUser struct {
	Username string `json:"username" validate:"required,min=3,max=80,username"`
	Name     string `json:"name" validate:"max=120,no_xss"`
	Avatar   string `json:"avatar" validate:"omitempty,max=120"`
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user records",
	}

	var in newUser
	var admin bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.New().Struct(in); err != nil {
				return fmt.Errorf("invalid user: %s", validate.Message(err))
			}
			return runJob(func(ctx context.Context, e *env) error {
				u := store.User{Username: in.Username, Avatar: in.Avatar, IsAdmin: admin}
				if in.Name != "" {
					u.Name = &in.Name
				}
				created, err := e.store.CreateUser(ctx, u)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s).\n", created.ID, created.Username)
				return nil
			})
		},
	}
	create.Flags().StringVar(&in.Username, "username", "", "Unique username")
	create.Flags().StringVar(&in.Name, "name", "", "Display name")
	create.Flags().StringVar(&in.Avatar, "avatar", "", "Avatar file name")
	create.Flags().BoolVar(&admin, "admin", false, "Grant admin")

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every user with their tips, chat, stats and reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all users without --yes")
			}
			return runJob(func(ctx context.Context, e *env) error {
				n, err := e.store.ClearUsers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d users.\n", n)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	cmd.AddCommand(create, clearCmd)
	return cmd
}

// --------------------------------------------------------------------------
// report command
// --------------------------------------------------------------------------

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Match intelligence reports",
	}

	var matchID string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a report synchronously and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				a := newAnalyst(e.cfg)
				if !a.Enabled() {
					return fmt.Errorf("OPENAI_API_KEY is required")
				}
				f, err := e.store.FixtureByMatchID(ctx, matchID)
				if err != nil {
					return fmt.Errorf("match %s: %w", matchID, err)
				}
				ctx, cancel := context.WithTimeout(ctx, e.cfg.ReportTimeout)
				defer cancel()
				text, err := a.Generate(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	generate.Flags().StringVar(&matchID, "match", "", "Match id")
	_ = generate.MarkFlagRequired("match")

	cmd.AddCommand(generate)
	return cmd
}

// --------------------------------------------------------------------------
// picker command
// --------------------------------------------------------------------------

func pickerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picker",
		Short: "Automated tipster",
	}

	var matchIDs []string
	run := &cobra.Command{
		Use:   "run",
		Short: "Let the analyst pick the bot user's tips for the current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(func(ctx context.Context, e *env) error {
				a := newAnalyst(e.cfg)
				if !a.Enabled() {
					return fmt.Errorf("OPENAI_API_KEY is required")
				}
				p := analyst.NewPicker(a, e.store, e.cfg.TipperbotUserID, logger)
				res, err := p.Run(ctx, matchIDs)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
				return nil
			})
		},
	}
	run.Flags().StringSliceVar(&matchIDs, "match-ids", nil, "Only these match ids (comma separated)")

	cmd.AddCommand(run)
	return cmd
}
