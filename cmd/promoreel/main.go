package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/promoreel/internal/campaign"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/director"
	"github.com/ivlev/promoreel/internal/engine"
	"github.com/ivlev/promoreel/internal/logging"
	"github.com/ivlev/promoreel/internal/publish"
	"github.com/ivlev/promoreel/internal/source"
	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/video"
)

var (
	cfgFile string
	verbose bool

	dataFile   string
	outDir     string
	cacheDir   string
	scriptsDir string
	imagesDir  string

	cfg *config.Config
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "promoreel",
	Short:        "promoreel - 9:16 promo video generator",
	Long:         "Generates TikTok-format promo videos from a campaign data file. Without a subcommand every batch is rendered.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logging.Init(verbose)
			return err
		}
		cfg.ApplyEnv()
		logging.Init(verbose || cfg.Verbose)

		overrides := map[string]*string{
			"data":    &cfg.DataFile,
			"out":     &cfg.OutputDir,
			"cache":   &cfg.CacheDir,
			"scripts": &cfg.ScriptsDir,
			"images":  &cfg.ImagesDir,
		}
		values := map[string]string{
			"data":    dataFile,
			"out":     outDir,
			"cache":   cacheDir,
			"scripts": scriptsDir,
			"images":  imagesDir,
		}
		for name, dst := range overrides {
			if cmd.Flags().Changed(name) {
				*dst = values[name]
			}
		}
		if verbose {
			cfg.Verbose = true
		}
		if cmd == configInitCmd {
			return nil
		}
		return cfg.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), "")
	},
}

func init() {
	rootCmd.SilenceErrors = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./promoreel.yaml or ./config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&dataFile, "data", "", "campaign data file")
	pf.StringVar(&outDir, "out", "", "output directory for videos")
	pf.StringVar(&cacheDir, "cache", "", "image cache directory")
	pf.StringVar(&scriptsDir, "scripts", "", "directory of video scripts (default: built-in)")
	pf.StringVar(&imagesDir, "images", "", "serve images from a local directory instead of downloading")

	rootCmd.AddCommand(batchCmd("ads", "Render the product ad videos"))
	rootCmd.AddCommand(batchCmd("viral", "Render the viral video"))

	scriptsCmd.AddCommand(scriptsExportCmd)
	scriptsCmd.AddCommand(scriptsListCmd)
	rootCmd.AddCommand(scriptsCmd)

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func batchCmd(batch, short string) *cobra.Command {
	return &cobra.Command{
		Use:   batch,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), batch)
		},
	}
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Video script commands",
}

var scriptsExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in scripts to a directory for editing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := director.ExportScripts(args[0])
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scripts that would be rendered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := director.LoadScripts(cfg.ScriptsDir)
		if err != nil {
			return err
		}
		for _, s := range scripts {
			fmt.Printf("%-6s %-28s %d scenes  %s\n", s.Batch, s.Name, len(s.Scenes), s.Title)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file (default: promoreel.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "promoreel.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func runBatch(ctx context.Context, batch string) error {
	camp, err := campaign.Load(cfg.DataFile)
	if err != nil {
		return err
	}

	scripts, err := director.LoadScripts(cfg.ScriptsDir)
	if err != nil {
		return err
	}
	scripts = director.FilterBatch(scripts, batch)
	if len(scripts) == 0 {
		return fmt.Errorf("no scripts for batch %q", batch)
	}

	if err := system.CheckFFmpeg(ctx, cfg.Encoder.FFmpegPath); err != nil {
		return err
	}
	if cfg.Encoder.Threads <= 0 {
		cfg.Encoder.Threads = system.EncoderThreads()
	}

	var fetcher source.Fetcher
	if cfg.ImagesDir != "" {
		local, err := source.NewImageSource(cfg.ImagesDir)
		if err != nil {
			return err
		}
		log.Info().Str("dir", cfg.ImagesDir).Int("images", local.Count()).Msg("using local images")
		fetcher = local
	} else {
		fetcher = source.NewHTTPFetcher(cfg.CacheDir, cfg.FetchTimeout, logging.WithComponent("fetch"))
	}

	enc := &video.FFmpegEncoder{
		FFmpegPath: cfg.Encoder.FFmpegPath,
		Logger:     logging.WithComponent("encode"),
	}

	gen := engine.NewGenerator(cfg, camp, fetcher, enc, logging.WithComponent("engine"))
	if fonts := gen.Fonts(); fonts.Path != "" {
		if _, err := fonts.Face(campaign.DefaultFontSize); err == nil && fonts.Fallback {
			log.Warn().Str("font", fonts.Path).Msg("font not loadable, using the embedded face")
		}
	}

	pub, err := publish.NewS3(ctx, cfg.Publish, log.Logger)
	if err != nil {
		return err
	}
	if pub != nil {
		gen.Publisher = pub
	}

	log.Info().
		Str("campaign", camp.Name).
		Str("countdown", camp.Countdown).
		Int("videos", len(scripts)).
		Str("out", cfg.OutputDir).
		Msg("starting batch")

	rep := gen.RunBatch(ctx, scripts)

	if path, err := rep.WriteManifest(cfg.OutputDir); err != nil {
		log.Error().Err(err).Msg("manifest not written")
	} else {
		log.Info().Str("path", path).Msg("manifest written")
	}
	fmt.Println(rep.Summary())
	return nil
}
