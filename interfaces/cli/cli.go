// Package cli is the familydir command line: the terminal browser plus a few
// maintenance commands that run against the configured store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/queries"
	"hazboun-backend/application/state"
	domainservices "hazboun-backend/domain/services"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/interfaces/http/rest"
	"hazboun-backend/interfaces/tui"
	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/errors"
)

const rootLongDesc string = `familydir browses and maintains the Hazboun family directory.

Configuration comes from the environment (STORE_DRIVER, SUPABASE_URL,
SUPABASE_ANON_KEY, DATABASE_URL, SEED_FILE, ...), the same variables the
API server reads.

  familydir tui                 Browse the directory in the terminal
  familydir ping                Probe the store and fetch the directory
  familydir stats               Print the headline numbers
  familydir export --out f.json Write the export file
  familydir import f.json       Check an export file and summarize it
  familydir serve               Run the HTTP API
  familydir token --subject me  Mint an admin token for the API`

var (
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Width(12)
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// opener builds the application container. Tests swap it for a config that
// does not come from the environment.
type opener func(ctx context.Context) (*di.Container, func(), error)

func fromEnv(logFile string) opener {
	return func(ctx context.Context) (*di.Container, func(), error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if cfg.LogFile == "" {
			cfg.LogFile = logFile
		}
		return di.InitializeContainer(ctx, cfg)
	}
}

// NewRootCmd creates the familydir command tree.
func NewRootCmd() *cobra.Command {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	logFile := filepath.Join(dir, "familydir", "familydir.log")
	return newRootCmd(fromEnv(logFile))
}

func newRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "familydir",
		Short:         "Hazboun family directory",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newTUICmd(open),
		newServeCmd(open),
		newPingCmd(open),
		newStatsCmd(open),
		newExportCmd(open),
		newImportCmd(open),
		newTokenCmd(),
	)
	return cmd
}

func newTUICmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the directory in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if c.CatalogWatcher != nil {
				c.CatalogWatcher.Start()
			}
			return tui.Run(cmd.Context(), c.CommandBus, c.QueryBus, c.Logger)
		},
	}
}

func newServeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			return rest.Serve(cmd.Context(), c)
		},
	}
}

func newPingCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Probe the store and fetch the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := c.CommandBus.Dispatch(cmd.Context(), commands.ReloadDirectoryCommand{})
			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintf(out, "%s %s\n", failStyle.Render("✗"), message(err))
				return err
			}
			info, _ := result.(state.Info)
			fmt.Fprintf(out, "%s %s store reachable\n", okStyle.Render("✓"), c.Config.StoreDriver)
			fmt.Fprintf(out, "%s%d\n", keyStyle.Render("Members"), info.Members)
			fmt.Fprintf(out, "%s%s\n", keyStyle.Render("Loaded at"), info.LoadedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newStatsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the headline numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if err := c.Loader.Load(cmd.Context()); err != nil {
				return err
			}

			result, err := c.QueryBus.Ask(cmd.Context(), queries.GetOverviewQuery{})
			if err != nil {
				return err
			}
			o, ok := result.(*domainservices.Overview)
			if !ok {
				return fmt.Errorf("unexpected overview result %T", result)
			}
			printStats(cmd.OutOrStdout(), o)

			result, err = c.QueryBus.Ask(cmd.Context(), queries.GetCountryStatsQuery{})
			if err != nil {
				return err
			}
			if places, ok := result.(*queries.CountryStats); ok {
				printCountries(cmd.OutOrStdout(), places)
			}
			return nil
		},
	}
}

func printStats(w io.Writer, o *domainservices.Overview) {
	rows := []struct {
		key   string
		value int
	}{
		{"Members", o.TotalMembers},
		{"Countries", o.TotalCountries},
		{"Cities", o.TotalCities},
		{"Branches", o.TotalBranches},
		{"Generations", o.MaxGeneration},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s%d\n", keyStyle.Render(r.key), r.value)
	}
}

func printCountries(w io.Writer, places *queries.CountryStats) {
	if len(places.Countries) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNTRY\tMEMBERS\tCITIES")
	for _, c := range places.Countries {
		cities := make([]string, len(c.Cities))
		for i, city := range c.Cities {
			cities[i] = fmt.Sprintf("%s (%d)", city.City, city.Members)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", c.Country, c.Members, strings.Join(cities, ", "))
	}
	_ = tw.Flush()
}

func newExportCmd(open opener) *cobra.Command {
	var (
		out     string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the directory export file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			if err := c.Loader.Load(cmd.Context()); err != nil {
				return err
			}

			if archive {
				result, err := c.CommandBus.Dispatch(cmd.Context(), commands.ArchiveExportCommand{At: time.Now()})
				if err != nil {
					return err
				}
				if a, ok := result.(commands.ArchiveResult); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "archived %d members to %s\n", a.Members, a.Location)
				}
				return nil
			}

			result, err := c.QueryBus.Ask(cmd.Context(), queries.ExportDirectoryQuery{})
			if err != nil {
				return err
			}
			file, ok := result.(*queries.ExportFile)
			if !ok {
				return fmt.Errorf("unexpected export result %T", result)
			}
			if out == "" {
				out = file.FileName
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(file.Data)
				return err
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			c.Logger.Info("Directory exported", zap.String("file", out), zap.Int("members", file.Members))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d members to %s\n", file.Members, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file ("-" for stdout, default hazboun-family-data.json)`)
	cmd.Flags().BoolVar(&archive, "archive", false, "store the export in the configured archive instead")
	return cmd
}

func newImportCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Check an export file and summarize it",
		Long: `Load an export file the way the API import does and report what it holds.

Imports only ever live in the memory of the process that took them, so this
command writes nothing to the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			c, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := c.CommandBus.Dispatch(cmd.Context(), commands.ImportDirectoryCommand{Data: data})
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), failStyle.Render(message(err)))
				return err
			}
			if r, ok := result.(commands.ImportResult); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s valid export file with %d members\n", okStyle.Render("✓"), r.Imported)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		email   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the API",
		Long:  "Mint an admin token signed with ADMIN_JWT_SECRET and ADMIN_JWT_ISSUER.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			issuer := os.Getenv("ADMIN_JWT_ISSUER")
			if issuer == "" {
				issuer = "hazboun-directory"
			}
			gen, err := auth.NewJWTGenerator(auth.JWTConfig{
				SecretKey: os.Getenv("ADMIN_JWT_SECRET"),
				Issuer:    issuer,
				Audience:  []string{auth.Audience},
			}, ttl)
			if err != nil {
				return err
			}
			token, err := gen.GenerateToken(subject, email, []string{auth.RoleAdmin})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id the token is issued to")
	cmd.Flags().StringVar(&email, "email", "", "email recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func message(err error) string {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
