// Package main provides the plx CLI: batch extraction of vehicle-pricelist
// tables from spreadsheet workbooks and layout-model element lists.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"plxcli/internal/config"
	"plxcli/internal/exporter"
	"plxcli/internal/extraction"
	"plxcli/internal/files"
	"plxcli/internal/infrastructure"
	"plxcli/internal/spreadsheet"
	"plxcli/pkg/contracts"
	"plxcli/pkg/contracts/domain"
)

var (
	mappingFile string
	workers     int
	outputPath  string
	format      string
	canonical   bool
	metricsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plx",
		Short:         "Extract structured vehicle-pricelist tables from spreadsheets",
		Long: `plx converts vehicle-pricelist workbooks (or layout-model element lists)
into schema-mapped structured records. Sheet markup is rendered with
merged-cell spans preserved, table headers are resolved to canonical
field paths via a declarative mapping document, and rows are
materialized into nested records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&mappingFile, "mapping", "m", "", "field-mapping document (default: mappings/default.yaml next to the executable)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent sheet extractions per workbook (default from config)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write a Prometheus textfile metric snapshot after the run")

	rootCmd.AddCommand(newRenderCmd(), newExtractCmd(), newBatchCmd(), newSchemaCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app bundles the wired runtime pieces every extraction command needs.
type app struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	service   *extraction.Service
}

// newApp loads configuration, initializes logging and metrics, resolves
// the field mapping, and wires the extraction service. Flag values
// override the loaded configuration.
func newApp() (*app, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if mappingFile != "" {
		cfg.Extraction.MappingFile = mappingFile
	}
	if workers > 0 {
		cfg.Extraction.Workers = workers
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}
	cfg.Logging.FilePath = paths.GetLogPath("plx.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, err
	}
	var metrics *infrastructure.ExtractionMetrics
	if providers.Meter != nil {
		if metrics, err = infrastructure.CreateExtractionMetrics(providers.Meter); err != nil {
			return nil, err
		}
	}

	mapCfg, err := extraction.ResolveMapping(cfg, paths, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		providers: providers,
		service:   extraction.NewService(cfg, mapCfg, metrics, logger),
	}, nil
}

// close flushes the metric snapshot when requested and shuts down the
// telemetry providers and log file.
func (a *app) close(ctx context.Context) {
	if metricsFile != "" {
		if err := a.providers.WriteMetricsFile(metricsFile); err != nil {
			a.logger.Warn("failed to write metric snapshot", "path", metricsFile, "error", err)
		}
	}
	if err := a.providers.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}
	_ = infrastructure.CloseLogFile()
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <workbook.xlsx>",
		Short: "Render workbook sheets to table markup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			sheets, err := spreadsheet.NewRenderer(a.logger).RenderWorkbook(args[0])
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := os.MkdirAll(outputPath, 0755); err != nil {
					return err
				}
				for _, sheet := range sheets {
					name := filepath.Join(outputPath, sheet.Name+".html")
					if err := os.WriteFile(name, []byte(sheet.Markup+"\n"), 0644); err != nil {
						return err
					}
				}
				return nil
			}
			for _, sheet := range sheets {
				fmt.Fprintf(cmd.OutOrStdout(), "<!-- sheet: %s -->\n%s\n", sheet.Name, sheet.Markup)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "directory for per-sheet markup files (default: stdout)")
	return cmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <workbook.xlsx|layout.json>",
		Short: "Extract structured table records from one input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			if format == "" {
				format = a.cfg.Export.Format
			}
			report, err := a.service.ExtractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeReport(cmd, a, report)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout for json, data/output otherwise)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, csv, or sqlite (default from config)")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "flatten rows onto the canonical vehicle schema (csv sink)")
	return cmd
}

// writeReport routes one extraction report to the selected sink.
func writeReport(cmd *cobra.Command, a *app, report *domain.ParseReport) error {
	switch format {
	case "json":
		if outputPath == "" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		return exporter.WriteJSON(outputPath, report)
	case "csv":
		out := sinkPath(a.paths, outputPath, report.FileName, "csv")
		if canonical {
			rows := extraction.VehicleRows(report.Data, report.FileName)
			return exporter.NewRowExporter(a.paths).WriteRowsCSV(out, rows)
		}
		return exporter.NewTableExporter(a.paths).WriteTablesCSV(out, report.Data)
	case "sqlite":
		rows := extraction.VehicleRows(report.Data, report.FileName)
		out := sinkPath(a.paths, outputPath, report.FileName, "db")
		return exporter.NewSQLiteExporter().WriteRows(cmd.Context(), out, rows)
	default:
		return fmt.Errorf("invalid output format: %s (must be json, csv, or sqlite)", format)
	}
}

// sinkPath picks the output file for a non-stdout sink: an explicit path
// wins, otherwise the input's base name lands in the output directory
// with the sink's extension.
func sinkPath(paths *config.Paths, explicit, inputName, ext string) string {
	if explicit != "" {
		return explicit
	}
	return paths.GetOutputPath(replaceExt(inputName, ext))
}

// replaceExt swaps a file name's extension, keeping the base name.
func replaceExt(name, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + "." + ext
}

// batchSink receives one extraction report at a time. The json sink writes
// a report file per input; the csv sink appends each input's rows to one
// shared stream; the sqlite sink appends to one database file.
type batchSink struct {
	write func(report *domain.ParseReport) error
	close func() error
}

func newBatchSink(ctx context.Context, paths *config.Paths, format, outDir string) (*batchSink, error) {
	switch format {
	case "json":
		return &batchSink{
			write: func(report *domain.ParseReport) error {
				out := filepath.Join(outDir, replaceExt(report.FileName, "json"))
				return exporter.WriteJSON(out, report)
			},
			close: func() error { return nil },
		}, nil
	case "csv":
		stream, err := exporter.NewRowExporter(paths).StreamRows(filepath.Join(outDir, "vehicle_rows.csv"))
		if err != nil {
			return nil, err
		}
		return &batchSink{
			write: func(report *domain.ParseReport) error {
				return stream.Append(extraction.VehicleRows(report.Data, report.FileName))
			},
			close: stream.Close,
		}, nil
	case "sqlite":
		db := exporter.NewSQLiteExporter()
		dbPath := filepath.Join(outDir, "vehicle_rows.db")
		return &batchSink{
			write: func(report *domain.ParseReport) error {
				rows := extraction.VehicleRows(report.Data, report.FileName)
				return db.WriteRows(ctx, dbPath, rows)
			},
			close: func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("invalid output format: %s (must be json, csv, or sqlite)", format)
	}
}

func newBatchCmd() *cobra.Command {
	var inDir, outDir string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract every workbook and element list in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			if outDir == "" {
				outDir = a.paths.OutputDir
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			if format == "" {
				format = a.cfg.Export.Format
			}

			inputs, err := files.NewDiscovery(a.paths.ExecutableDir).FindInputFiles(inDir)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				a.logger.Warn("no input files found", "dir", inDir)
				return nil
			}

			sink, err := newBatchSink(cmd.Context(), a.paths, format, outDir)
			if err != nil {
				return err
			}

			var processed, failed int
			for _, input := range inputs {
				report, err := a.service.ExtractFile(cmd.Context(), input.Path)
				if err != nil {
					// One unreadable file must not block its siblings.
					a.logger.Error("skipping input", "file", input.Name, "error", err)
					failed++
					continue
				}
				if err := sink.write(report); err != nil {
					_ = sink.close()
					return err
				}
				processed++
			}
			if err := sink.close(); err != nil {
				return err
			}

			a.logger.Info("batch complete",
				"dir", inDir,
				"format", format,
				"processed", processed,
				"failed", failed)
			if processed == 0 {
				return fmt.Errorf("all %d input files failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inDir, "in", "", "input directory to scan for workbooks and element lists")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: data/output)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, csv, or sqlite (default from config)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var pages bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Emit the canonical vehicle-row JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := domain.VehicleRowSchema()
			if pages {
				schema = domain.PageResultSchema()
			}
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			if outputPath != "" {
				return os.WriteFile(outputPath, append(data, '\n'), 0644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&pages, "pages", false, "emit the page-result schema instead of the vehicle-row schema")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
