// Command clusterpipe drives the amplicon read clustering pipeline: nine
// checkpointed stages over a working directory, delegating the analysis
// itself to cutadapt, pear, vsearch and usearch.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clusterpipe/internal/config"
	"clusterpipe/internal/execx"
	"clusterpipe/internal/log"
	"clusterpipe/internal/stages"
	"clusterpipe/pkg/pipeline"
	"clusterpipe/pkg/pipeline/drawer"
	"clusterpipe/pkg/pipeline/measure"
	"clusterpipe/pkg/pipeline/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath  string
		drawFile string
	)
	flags := config.Default()

	cmd := &cobra.Command{
		Use:   "clusterpipe",
		Short: "Restartable amplicon read clustering pipeline",
		Long: `clusterpipe processes paired-end amplicon sequencing reads through a fixed
chain of nine stages: ingest, primer trimming, paired-read merging, quality
filtering, run combination, dereplication, OTU clustering, chimera detection
and OTU table building.

Every stage checkpoints into its own directory under the working directory.
Re-running against the same working directory skips completed stages and
re-attempts only the one that failed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			overlayFlags(cmd, cfg, flags)
			log.Init(cfg.LogLevel)

			if err := cfg.Validate(); err != nil {
				err = pipeline.Configuration(err)
				log.Error("invalid configuration", "error", err)

				return err
			}

			opts := []model.PipelineOption{
				measure.PipelineMeasure(measure.NewDefaultMeasure()),
			}
			if drawFile != "" {
				opts = append(opts, drawer.PipelineDrawer(drawer.NewSVGDrawer(drawFile)))
			}

			pipe, err := pipeline.New(cfg.WorkDir, execx.NewProcessRunner(), log.Logger(), stages.All(cfg), opts...)
			if err != nil {
				return err
			}

			report, err := pipe.Run(cmd.Context(), cfg.InputDir)
			if err != nil {
				log.Error("pipeline failed", "error", err)

				return err
			}

			for _, dir := range report.OutputDirs() {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a yaml configuration file")
	cmd.Flags().StringVar(&drawFile, "draw", "", "write the stage chain as a DOT graph to this file")

	cmd.Flags().StringVarP(&flags.InputDir, "input-dir", "i", flags.InputDir, "path to the input directory")
	cmd.Flags().StringVarP(&flags.WorkDir, "work-dir", "w", flags.WorkDir, "path to the working directory")
	cmd.Flags().IntVarP(&flags.Cores, "core-count", "c", flags.Cores, "number of cores forwarded to the external tools")

	cmd.Flags().StringVar(&flags.ForwardPrimer, "forward-primer", flags.ForwardPrimer, "forward primer to be clipped")
	cmd.Flags().StringVar(&flags.ReversePrimer, "reverse-primer", flags.ReversePrimer, "reverse primer to be clipped")
	cmd.Flags().StringVar(&flags.UchimeRefDB, "uchime-ref-db", flags.UchimeRefDB, "reference database for chimera detection")

	cmd.Flags().IntVar(&flags.CutadaptMinLength, "cutadapt-min-length", 0, "minimum read length kept by cutadapt")
	cmd.Flags().IntVar(&flags.PearMinOverlap, "pear-min-overlap", 0, "minimum overlap for pear")
	cmd.Flags().IntVar(&flags.PearMaxAssemblyLength, "pear-max-assembly-length", 0, "maximum assembly length for pear")
	cmd.Flags().IntVar(&flags.PearMinAssemblyLength, "pear-min-assembly-length", 0, "minimum assembly length for pear")
	cmd.Flags().IntVar(&flags.VsearchFilterMaxEE, "vsearch-filter-maxee", 0, "maximum expected error for vsearch filtering")
	cmd.Flags().IntVar(&flags.VsearchFilterTruncLen, "vsearch-filter-trunclen", 0, "truncation length for vsearch filtering")
	cmd.Flags().IntVar(&flags.VsearchDerepMinUniqueSize, "vsearch-derep-minuniquesize", 0, "minimum unique abundance kept by dereplication")

	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "log level (debug, info, warn, error)")

	return cmd
}

// overlayFlags applies every flag the user set on top of the loaded
// configuration, so that flags beat the config file and the environment.
func overlayFlags(cmd *cobra.Command, cfg, flags *config.Config) {
	set := map[string]func(){
		"input-dir":                   func() { cfg.InputDir = flags.InputDir },
		"work-dir":                    func() { cfg.WorkDir = flags.WorkDir },
		"core-count":                  func() { cfg.Cores = flags.Cores },
		"forward-primer":              func() { cfg.ForwardPrimer = flags.ForwardPrimer },
		"reverse-primer":              func() { cfg.ReversePrimer = flags.ReversePrimer },
		"uchime-ref-db":               func() { cfg.UchimeRefDB = flags.UchimeRefDB },
		"cutadapt-min-length":         func() { cfg.CutadaptMinLength = flags.CutadaptMinLength },
		"pear-min-overlap":            func() { cfg.PearMinOverlap = flags.PearMinOverlap },
		"pear-max-assembly-length":    func() { cfg.PearMaxAssemblyLength = flags.PearMaxAssemblyLength },
		"pear-min-assembly-length":    func() { cfg.PearMinAssemblyLength = flags.PearMinAssemblyLength },
		"vsearch-filter-maxee":        func() { cfg.VsearchFilterMaxEE = flags.VsearchFilterMaxEE },
		"vsearch-filter-trunclen":     func() { cfg.VsearchFilterTruncLen = flags.VsearchFilterTruncLen },
		"vsearch-derep-minuniquesize": func() { cfg.VsearchDerepMinUniqueSize = flags.VsearchDerepMinUniqueSize },
		"log-level":                   func() { cfg.LogLevel = flags.LogLevel },
	}
	for name, apply := range set {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}
