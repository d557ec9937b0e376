// Package stages implements the nine analysis stages of the clustering
// pipeline: primer trimming, paired-read merging, quality filtering,
// dereplication, clustering, chimera detection and OTU table building.
//
// Each stage declares a small parameter struct holding only the
// configuration fields it needs, and returns a pipeline.Body closed over it.
package stages

import (
	"path/filepath"

	"clusterpipe/internal/config"
	"clusterpipe/pkg/pipeline"
	"clusterpipe/pkg/pipeline/model"
)

// Stage directory names keep the step_NN convention of earlier pipeline
// versions so existing work trees remain resumable.
const (
	NameCopyAndCompress = "step_01_copy_and_compress"
	NameRemovePrimers   = "step_02_remove_primers"
	NameMergePairs      = "step_03_merge_forward_reverse_reads_with_pear"
	NameQualityFilter   = "step_04_qc_reads_with_vsearch"
	NameCombineRuns     = "step_05_combine_runs"
	NameDereplicate     = "step_06_dereplicate_sort_remove_low_abundance_reads"
	NameClusterOTUs     = "step_07_cluster_97_percent"
	NameChimeraCheck    = "step_08_reference_based_chimera_detection"
	NameOTUTable        = "step_09_create_otu_table"
)

// All builds the fixed nine-stage chain from cfg.
func All(cfg *config.Config) []pipeline.Stage {
	// The OTU table stage maps reads from the merge stage against the final
	// OTU set, so it resolves that checkpoint directory through the
	// registered stage name instead of globbing the working directory.
	mergedReadsDir := filepath.Join(cfg.WorkDir, NameMergePairs)

	return []pipeline.Stage{
		{
			Info: model.StageInfo{Name: NameCopyAndCompress, Ordinal: 1},
			Body: CopyAndCompress(CopyParams{Cores: cfg.Cores}),
		},
		{
			Info: model.StageInfo{Name: NameRemovePrimers, Ordinal: 2},
			Body: RemovePrimers(PrimerParams{
				Cutadapt:      cfg.Tools.Cutadapt,
				ForwardPrimer: cfg.ForwardPrimer,
				ReversePrimer: cfg.ReversePrimer,
				MinLength:     cfg.CutadaptMinLength,
			}),
		},
		{
			Info: model.StageInfo{Name: NameMergePairs, Ordinal: 3},
			Body: MergePairs(MergeParams{
				Pear:              cfg.Tools.Pear,
				MinOverlap:        cfg.PearMinOverlap,
				MaxAssemblyLength: cfg.PearMaxAssemblyLength,
				MinAssemblyLength: cfg.PearMinAssemblyLength,
				Cores:             cfg.Cores,
			}),
		},
		{
			Info: model.StageInfo{Name: NameQualityFilter, Ordinal: 4},
			Body: QualityFilter(FilterParams{
				Vsearch:  cfg.Tools.Vsearch,
				MaxEE:    cfg.VsearchFilterMaxEE,
				TruncLen: cfg.VsearchFilterTruncLen,
				Cores:    cfg.Cores,
			}),
		},
		{
			Info: model.StageInfo{Name: NameCombineRuns, Ordinal: 5},
			Body: CombineRuns(),
		},
		{
			Info: model.StageInfo{Name: NameDereplicate, Ordinal: 6},
			Body: Dereplicate(DerepParams{
				Vsearch:       cfg.Tools.Vsearch,
				MinUniqueSize: cfg.VsearchDerepMinUniqueSize,
				Cores:         cfg.Cores,
			}),
		},
		{
			Info: model.StageInfo{Name: NameClusterOTUs, Ordinal: 7},
			Body: ClusterOTUs(ClusterParams{Usearch: cfg.Tools.Usearch}),
		},
		{
			Info: model.StageInfo{Name: NameChimeraCheck, Ordinal: 8},
			Body: ChimeraCheck(ChimeraParams{
				Vsearch: cfg.Tools.Vsearch,
				RefDB:   cfg.UchimeRefDB,
				Cores:   cfg.Cores,
			}),
		},
		{
			Info: model.StageInfo{Name: NameOTUTable, Ordinal: 9},
			Body: OTUTable(OTUTableParams{
				Vsearch:        cfg.Tools.Vsearch,
				MergedReadsDir: mergedReadsDir,
			}),
		},
	}
}
