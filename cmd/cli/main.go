package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/app"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
)

func main() {
	if err := newRootCommand(config.Load(), app.OpenCatalog).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// opener opens the catalog for one command.
type opener func(cfg *config.Config) (*app.App, error)

func newRootCommand(cfg *config.Config, open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "catalog",
		Short:        "Die-cast catalog maintenance tool",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cfg.LogLevel, cfg.AppEnv)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.CatalogSource, "source", cfg.CatalogSource, "Record store: file or sqlite")
	rootCmd.PersistentFlags().StringVar(&cfg.CatalogPath, "path", cfg.CatalogPath, "Catalog JSON file when --source=file")
	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Database URL when --source=sqlite")

	with := func(cmd *cobra.Command, fn func(*app.App) error) (err error) {
		catalog, err := open(cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, catalog.Close(cmd.Context()))
		}()
		return fn(catalog)
	}
	rootCmd.AddCommand(exportCommand(with), importCommand(with), yearsCommand(with))
	return rootCmd
}

// runner opens the catalog, runs fn and closes the catalog even when fn fails.
type runner func(cmd *cobra.Command, fn func(*app.App) error) error

func exportCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Dump every catalog record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(catalog *app.App) error {
				models, err := catalog.Records.Load(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), models)
			})
		},
	}
}

func importCommand(with runner) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the catalog with records from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := readModels(file)
			if err != nil {
				return err
			}
			return with(cmd, func(catalog *app.App) error {
				if err := catalog.Catalog.Import(cmd.Context(), models); err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d models\n", len(models))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func yearsCommand(with runner) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "Print the years present in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(catalog *app.App) error {
				years, err := catalog.Catalog.AvailableYears(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, strings.Join(years, "\n"))
				fmt.Fprintf(out, "Ranges: %s\n", search.FormatYearRanges(years))
				return nil
			})
		},
	}
}

func readModels(filename string) ([]domain.Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var models []domain.Model
	if err := json.NewDecoder(file).Decode(&models); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return models, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
