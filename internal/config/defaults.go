package config

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// the config file and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			// 10 MB keeps the shared module log bounded across many runs.
			MaxSizeMB: 10,

			// Three backups preserve recent history without unbounded growth.
			MaxBackups: 3,

			// Rotated files older than four weeks are dropped.
			MaxAgeDays: 28,

			Compress: true,
		},
		Output: OutputConfig{
			// "Imt_" namespaces analysis outputs from unrelated files in
			// the same folder.
			DirPrefix: "Imt_",

			MaxCollisionSuffix: 99,
		},
		Data: DataConfig{
			AtlasPath:      "atlas-desikankilliany_1mm_MNI152.nii.gz",
			ExpressionPath: "gene_expression_data.csv",
			LabelsPath:     "gene_expression_labels.txt",

			// The Allen Human Brain Atlas expression data covers the left
			// hemisphere only, hence 41 regions rather than 82.
			Regions: 41,
		},
		Analysis: AnalysisConfig{
			MaxComponents: 15,
		},
	}
}
