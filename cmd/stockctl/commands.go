package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/stockroom/internal/admin"
	"github.com/JonMunkholm/stockroom/internal/auth"
	"github.com/JonMunkholm/stockroom/internal/core"
	db "github.com/JonMunkholm/stockroom/internal/database"
	"github.com/JonMunkholm/stockroom/internal/logging"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.Migrate(cmd.Context(), a.pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newAddUserCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Register a user who can sign in to the web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authn := auth.NewAuthenticator(auth.NewPostgresUserStore(a.pool))
			user, err := authn.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply a barcode;description;quantity batch",
		Long: "Reads a batch from --file, or from stdin when the file is \"-\",\n" +
			"and adds each line's quantity to the matching product.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readBatch(cmd, file, a.cfg.Import.MaxInputSize)
			if err != nil {
				return err
			}

			store := core.NewPostgresStore(a.pool)
			svc := core.NewService(store, store, a.cfg)
			ctx := logging.ContextWithUser(cmd.Context(), "stockctl")

			var summary core.ImportSummary
			if dryRun {
				summary, err = svc.PreviewImport(ctx, raw)
			} else {
				summary, err = svc.ImportBatch(ctx, raw)
			}
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "batch file, - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the changes without writing them")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every product to CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := core.ParseExportFormat(format)
			if err != nil {
				return err
			}

			store := core.NewPostgresStore(a.pool)
			svc := core.NewService(store, store, a.cfg)
			return writeOutput(cmd, out, func(w io.Writer) error {
				return svc.ExportStock(cmd.Context(), w, f)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

// writeOutput runs write against path, or stdout for "-". A failed close
// is returned since it can mean buffered data never reached the file.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}

	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(file)
}

// readBatch reads the import text from path, or stdin for "-".
func readBatch(cmd *cobra.Command, path string, limit int64) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return core.ReadInput(r, limit)
}

// printSummary writes the batch counts and one line per rejected row.
func printSummary(w io.Writer, s core.ImportSummary) {
	if s.DryRun {
		fmt.Fprintln(w, "dry run, nothing written")
	} else {
		fmt.Fprintf(w, "import %s\n", s.RunID)
	}
	fmt.Fprintf(w, "inserted=%d updated=%d malformed=%d failed=%d\n",
		s.Inserted, s.Updated, s.Malformed, s.Failed)
	if s.Interrupted {
		fmt.Fprintln(w, "interrupted: remaining lines were not applied")
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "line %d: %s\n", e.Line, e.Reason)
	}
}

func newResetCmd(a *app) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every product and the import history",
		Long:  "Empties the products and import_runs tables. Users are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to reset without --yes")
			}
			r := &admin.Reset{DB: a.pool}
			if err := r.ResetStock(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stock data reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the reset")
	return cmd
}
