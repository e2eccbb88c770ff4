package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finlex-cli/internal/finlex"
	"github.com/custodia-labs/finlex-cli/internal/logging"
	"github.com/custodia-labs/finlex-cli/internal/pipeline"
	"github.com/custodia-labs/finlex-cli/internal/state"
)

var (
	dlTypes      []string
	dlYears      int
	dlYearsByCat = map[string]*int{
		"act":                  new(int),
		"judgment":             new(int),
		"doc":                  new(int),
		"authority-regulation": new(int),
	}
	dlLang       string
	dlLimit      int
	dlMaxPages   int
	dlSleep      float64
	dlMaxRetries int
	dlPDF        bool
	dlZip        bool
	dlMedia      bool
	dlForce      bool
	dlDryRun     bool
	dlResume     bool
	dlReset      bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download documents for the selected categories",
	Long: `Paginates the listing endpoint for every selected category and document
type, downloads each document's XML (plus optional PDF, zip package and
media companions) and records progress so the run can be interrupted and
resumed.`,
	RunE: runDownload,
}

func init() {
	flags := downloadCmd.Flags()
	flags.StringSliceVar(&dlTypes, "types", []string{"act"},
		"categories to download (act, judgment, doc, authority-regulation)")
	flags.IntVar(&dlYears, "years", 1, "number of years to download")
	for cat, dest := range dlYearsByCat {
		flags.IntVar(dest, "years-"+cat, 0, "override years for "+cat)
	}
	flags.StringVar(&dlLang, "lang", "fin@", "language and version marker")
	flags.IntVar(&dlLimit, "limit", finlex.MaxPageSize,
		fmt.Sprintf("page size for list requests (max %d)", finlex.MaxPageSize))
	flags.IntVar(&dlMaxPages, "max-pages", 0, "maximum pages per document type (0 = all)")
	flags.Float64Var(&dlSleep, "sleep", 5.0, "seconds between requests")
	flags.IntVar(&dlMaxRetries, "max-retries", finlex.MaxRetries,
		"retries for transient request failures")
	flags.BoolVar(&dlPDF, "pdf", false, "also download PDF versions")
	flags.BoolVar(&dlZip, "zip", false, "also download zip packages")
	flags.BoolVar(&dlMedia, "media", false, "also download referenced media files")
	flags.BoolVar(&dlForce, "force", false, "re-download existing files")
	flags.BoolVar(&dlDryRun, "dry-run", false, "report what would be downloaded")
	flags.BoolVar(&dlResume, "resume", false, "resume from the last checkpoint")
	flags.BoolVar(&dlReset, "reset", false, "discard the checkpoint and start fresh")

	rootCmd.AddCommand(downloadCmd)
}

// mergeDownloadFlags folds explicitly-set flags over the loaded config.
func mergeDownloadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("types") {
		cfg.Categories = dlTypes
	}
	if flags.Changed("years") {
		cfg.Years = dlYears
	}
	if flags.Changed("lang") {
		cfg.Lang = dlLang
	}
	if flags.Changed("limit") {
		cfg.PageSize = dlLimit
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages = dlMaxPages
	}
	if flags.Changed("sleep") {
		cfg.SleepSeconds = dlSleep
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = dlMaxRetries
	}
	if flags.Changed("pdf") {
		cfg.FetchPDF = dlPDF
	}
	if flags.Changed("zip") {
		cfg.FetchZip = dlZip
	}
	if flags.Changed("media") {
		cfg.FetchMedia = dlMedia
	}
	if cfg.YearOverrides == nil {
		cfg.YearOverrides = make(map[string]int)
	}
	for cat, dest := range dlYearsByCat {
		if flags.Changed("years-"+cat) && *dest > 0 {
			cfg.YearOverrides[cat] = *dest
		}
	}
}

func runDownload(cmd *cobra.Command, args []string) error {
	mergeDownloadFlags(cmd)

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger, closeLog := logging.Setup(filepath.Join(cfg.Output, "finlex.log"), cfg.Level())
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkpoint := state.NewCheckpoint(
		filepath.Join(cfg.Output, state.CheckpointFileName), logger)
	if dlReset {
		checkpoint.Reset()
	}
	if dlResume {
		checkpoint.Load()
	}

	manifest := state.NewManifest(
		filepath.Join(cfg.Output, state.ManifestFileName), logger)

	client := finlex.NewClient(
		finlex.WithRequestInterval(time.Duration(cfg.SleepSeconds*float64(time.Second))),
		finlex.WithMaxRetries(cfg.MaxRetries),
		finlex.WithLogger(logger),
	)

	runner := pipeline.NewRunner(client, checkpoint, manifest, logger)
	summary, err := runner.Run(ctx, pipeline.Options{
		OutputRoot:     cfg.Output,
		Categories:     cfg.Categories,
		Years:          cfg.Years,
		YearOverrides:  cfg.YearOverrides,
		LangAndVersion: cfg.Lang,
		PageSize:       cfg.PageSize,
		MaxPages:       cfg.MaxPages,
		FetchPDF:       cfg.FetchPDF,
		FetchZip:       cfg.FetchZip,
		FetchMedia:     cfg.FetchMedia,
		Force:          dlForce,
		DryRun:         dlDryRun,
		Resume:         dlResume,
	})

	printSummary(cmd, summary)
	if err != nil {
		return err
	}
	if summary.Error > 0 {
		return fmt.Errorf("run finished with %d error(s)", summary.Error)
	}
	return nil
}

func printSummary(cmd *cobra.Command, s state.Summary) {
	cmd.Printf("Download complete: %d success, %d skipped, %d errors",
		s.Success, s.Skipped, s.Error)
	if s.DryRun > 0 {
		cmd.Printf(", %d dry-run", s.DryRun)
	}
	cmd.Println()
}
