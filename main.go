package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/database"
	"github.com/omelkes/phaicull/dedup"
	"github.com/omelkes/phaicull/detectors"
	"github.com/omelkes/phaicull/filter"
	"github.com/omelkes/phaicull/imageprocessor"
	"github.com/omelkes/phaicull/logging"
	"github.com/omelkes/phaicull/mover"
	"github.com/omelkes/phaicull/report"
	"github.com/omelkes/phaicull/scanner"
	"github.com/omelkes/phaicull/signalhandler"
	"github.com/omelkes/phaicull/types"
)

var version = "0.2.0"

var (
	flagConfig       string
	flagAction       string
	flagOutput       string
	flagReport       string
	flagKeepFiltered bool
	flagNoRecursive  bool
	flagHashCache    string
	flagEXIF         bool
	flagDebug        bool
	flagLogfile      string

	flagNoBlur         bool
	flagNoExposure     bool
	flagNoResolution   bool
	flagNoNoise        bool
	flagNoDuplicates   bool
	flagNoClosedEyes   bool
	flagFilterNoPeople bool

	flagBlurThreshold   float64
	flagDarkThreshold   float64
	flagBrightThreshold float64
	flagMinWidth        int
	flagMinHeight       int
	flagNoiseThreshold  float64
	flagDupSimilarity   int
)

var rootCmd = &cobra.Command{
	Use:     "phaicull [flags] INPUT_DIR",
	Short:   "Photo culling tool - flag blurred, dark, duplicate, and low-quality photos",
	Version: version,
	Args:    cobra.ExactArgs(1),
	Long: `phaicull analyzes a directory of photographs and flags the ones worth
filtering out: blurred, badly exposed, low-resolution, noisy, duplicated, or
with closed eyes. It writes a JSON report and can copy or move the kept (or
filtered) photos into a separate directory, preserving the folder layout.`,
	Example: `  # Analyze photos and write filter_report.json
  phaicull /path/to/photos

  # Move the kept photos to a separate folder
  phaicull /path/to/photos --action move --output /path/to/keepers

  # Only check for blur and duplicates
  phaicull /path/to/photos --no-exposure --no-resolution --no-noise

  # Adjust blur sensitivity (lower = more strict)
  phaicull /path/to/photos --blur-threshold 150`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()

	f.StringVar(&flagConfig, "config", "", "YAML configuration file (flags override it)")
	f.StringVar(&flagAction, "action", "report", "what to do with the photos: report, copy or move")
	f.StringVar(&flagOutput, "output", "", "output directory for copy/move actions")
	f.StringVar(&flagReport, "report", "filter_report.json", "path of the JSON report")
	f.BoolVar(&flagKeepFiltered, "keep-filtered", false, "copy/move the filtered photos instead of the kept ones")
	f.BoolVar(&flagNoRecursive, "no-recursive", false, "do not scan subdirectories")
	f.StringVar(&flagHashCache, "hash-cache", "", "SQLite file caching perceptual hashes between runs")
	f.BoolVar(&flagEXIF, "exif", false, "add camera EXIF metadata to the report (requires exiftool)")
	f.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	f.StringVar(&flagLogfile, "logfile", "phaicull.log", "debug log file path")

	f.BoolVar(&flagNoBlur, "no-blur", false, "disable blur detection")
	f.BoolVar(&flagNoExposure, "no-exposure", false, "disable exposure (dark/bright) detection")
	f.BoolVar(&flagNoResolution, "no-resolution", false, "disable low resolution detection")
	f.BoolVar(&flagNoNoise, "no-noise", false, "disable noise detection")
	f.BoolVar(&flagNoDuplicates, "no-duplicates", false, "disable duplicate detection")
	f.BoolVar(&flagNoClosedEyes, "no-closed-eyes", false, "disable closed eyes detection")
	f.BoolVar(&flagFilterNoPeople, "filter-no-people", false, "filter out photos without people")

	f.Float64Var(&flagBlurThreshold, "blur-threshold", 100.0, "blur detection threshold (lower = more strict)")
	f.Float64Var(&flagDarkThreshold, "dark-threshold", 0.5, "dark photo threshold 0-1")
	f.Float64Var(&flagBrightThreshold, "bright-threshold", 0.5, "overexposed photo threshold 0-1")
	f.IntVar(&flagMinWidth, "min-width", 800, "minimum acceptable width in pixels")
	f.IntVar(&flagMinHeight, "min-height", 600, "minimum acceptable height in pixels")
	f.Float64Var(&flagNoiseThreshold, "noise-threshold", 1000.0, "noise detection threshold (higher = more strict)")
	f.IntVar(&flagDupSimilarity, "duplicate-similarity", 5, "duplicate similarity 0-64 (lower = more strict)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig assembles the filter configuration from defaults, the optional
// YAML file, and explicit flags (which always win).
func buildConfig(cmd *cobra.Command) (config.FilterConfig, error) {
	cfg := config.Default()

	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg.CheckBlur = cfg.CheckBlur && !flagNoBlur
	cfg.CheckExposure = cfg.CheckExposure && !flagNoExposure
	cfg.CheckResolution = cfg.CheckResolution && !flagNoResolution
	cfg.CheckNoise = cfg.CheckNoise && !flagNoNoise
	cfg.CheckDuplicates = cfg.CheckDuplicates && !flagNoDuplicates
	cfg.CheckClosedEyes = cfg.CheckClosedEyes && !flagNoClosedEyes
	cfg.FilterNoPeople = cfg.FilterNoPeople || flagFilterNoPeople

	f := cmd.Flags()
	if f.Changed("blur-threshold") {
		cfg.BlurThreshold = flagBlurThreshold
	}
	if f.Changed("dark-threshold") {
		cfg.DarkThreshold = flagDarkThreshold
	}
	if f.Changed("bright-threshold") {
		cfg.BrightThreshold = flagBrightThreshold
	}
	if f.Changed("min-width") {
		cfg.MinWidth = flagMinWidth
	}
	if f.Changed("min-height") {
		cfg.MinHeight = flagMinHeight
	}
	if f.Changed("noise-threshold") {
		cfg.NoiseThreshold = flagNoiseThreshold
	}
	if f.Changed("duplicate-similarity") {
		cfg.DuplicateSimilarity = flagDupSimilarity
	}

	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	signalhandler.SetupHandler()

	opts := config.RunOptions{
		InputDir:     args[0],
		Action:       config.Action(flagAction),
		OutputDir:    flagOutput,
		ReportPath:   flagReport,
		KeepFiltered: flagKeepFiltered,
		Recursive:    !flagNoRecursive,
		HashCache:    flagHashCache,
		EnrichEXIF:   flagEXIF,
		DebugMode:    flagDebug,
		LogPath:      flagLogfile,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if opts.DebugMode {
		if err := logging.SetupLogger(opts.LogPath); err != nil {
			fmt.Printf("Warning: failed to set up logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", opts.LogPath)
			defer logging.CloseLogger()
		}
	}

	return processPhotos(cfg, opts)
}

func processPhotos(cfg config.FilterConfig, opts config.RunOptions) error {
	fmt.Printf("Scanning directory: %s\n", opts.InputDir)
	images, err := scanner.ListImages(opts.InputDir, opts.Recursive)
	if err != nil {
		return fmt.Errorf("cannot scan %s: %v", opts.InputDir, err)
	}
	fmt.Printf("Found %d image(s)\n", len(images))

	if len(images) == 0 {
		fmt.Println("No images found to process")
		return nil
	}

	suite, err := detectors.NewSuite(cfg)
	if err != nil {
		return err
	}
	defer suite.Close()

	engine := filter.NewEngine(cfg, suite)

	fmt.Println("\nAnalyzing images...")
	startTime := time.Now()

	progressChan := make(chan types.FilterResult, 100)
	tracker := scanner.NewProgressTracker(len(images), progressChan)

	results := engine.RunBatch(images, signalhandler.GetOptimalProcs(), func(r types.FilterResult) {
		progressChan <- r
	})
	close(progressChan)
	tracker.Stop()

	if cfg.CheckDuplicates {
		fmt.Println("\nDetecting duplicates...")
		groups, err := findDuplicateGroups(engine, images, opts)
		if err != nil {
			return err
		}
		results = filter.AmendDuplicates(results, groups)
		logging.DebugLog("found %d duplicate groups", len(groups))
	}

	printSummary(results, time.Since(startTime))

	if opts.EnrichEXIF {
		fmt.Println("\nReading EXIF metadata...")
		report.EnrichEXIF(results)
	}

	fmt.Printf("\nSaving report to: %s\n", opts.ReportPath)
	if err := report.Write(opts.ReportPath, cfg, results); err != nil {
		return err
	}

	return applyAction(results, opts)
}

// findDuplicateGroups hashes the batch (through the optional persistent
// cache) and runs the grouper.
func findDuplicateGroups(engine *filter.Engine, images []string, opts config.RunOptions) ([]types.DuplicateGroup, error) {
	var store imageprocessor.HashStore
	if opts.HashCache != "" {
		cache, err := database.Open(opts.HashCache)
		if err != nil {
			return nil, err
		}
		defer func() {
			if count, err := cache.Count(); err == nil {
				logging.DebugLog("hash cache now holds %d entries", count)
			}
			cache.Close()
		}()
		store = cache
	}

	hasher := imageprocessor.NewHasher(store)
	groups := engine.FindDuplicates(images, hasher.Hash)

	if opts.DebugMode {
		table := hasher.Table()
		logging.DebugLog("hashed %d of %d images", countHashed(table), len(images))
	}

	return groups, nil
}

func countHashed(table dedup.HashTable) int {
	hashed := 0
	for _, hash := range table {
		if hash != nil {
			hashed++
		}
	}
	return hashed
}

func printSummary(results []types.FilterResult, elapsed time.Duration) {
	filtered := 0
	reasonCounts := map[string]int{}
	for _, result := range results {
		if !result.ShouldFilter {
			continue
		}
		filtered++
		for _, reason := range result.Reasons {
			base := strings.TrimSpace(strings.SplitN(reason, "(", 2)[0])
			reasonCounts[base]++
		}
	}

	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nResults Summary:\n%s\n", line, line)
	fmt.Printf("Total images: %d\n", len(results))
	fmt.Printf("Images to filter: %d\n", filtered)
	fmt.Printf("Images to keep: %d\n", len(results)-filtered)
	fmt.Printf("Analysis time: %v\n", elapsed.Round(time.Second))

	if filtered == 0 {
		return
	}

	reasons := make([]string, 0, len(reasonCounts))
	for reason := range reasonCounts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if reasonCounts[reasons[i]] != reasonCounts[reasons[j]] {
			return reasonCounts[reasons[i]] > reasonCounts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})

	fmt.Println("\nFilter reasons:")
	for _, reason := range reasons {
		fmt.Printf("  %s: %d\n", reason, reasonCounts[reason])
	}
}

func applyAction(results []types.FilterResult, opts config.RunOptions) error {
	if opts.Action == config.ActionReport {
		return nil
	}

	var selected []string
	for _, result := range results {
		if result.ShouldFilter == opts.KeepFiltered {
			selected = append(selected, result.Path)
		}
	}

	subset := "kept"
	if opts.KeepFiltered {
		subset = "filtered"
	}
	verb := "Copying"
	if opts.Action == config.ActionMove {
		verb = "Moving"
	}
	fmt.Printf("\n%s %s photos to: %s\n", verb, subset, opts.OutputDir)

	transferred, err := mover.Apply(opts.Action, opts.InputDir, opts.OutputDir, selected)
	if transferred > 0 {
		fmt.Printf("Transferred %d photo(s)\n", transferred)
	}
	return err
}
