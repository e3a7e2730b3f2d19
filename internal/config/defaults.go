package config

const (
	defaultStateDir          = "~/.local/share/measuremap"
	defaultLogDir            = "~/.local/share/measuremap/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultPattern           = "*"
	defaultSuffix            = ".mm.json"
	defaultCompressedSuffix  = ".mmc.json"
	defaultTableExtension    = ".tsv"
	defaultFactsExtension    = ".facts.json"
	defaultIncremental       = true
	defaultCheckPartsMatch   = true
	maxWorkers               = 256
	ledgerFileName           = "ledger.db"
	envStateDir              = "MEASUREMAP_STATE_DIR"
	envLogLevel              = "MEASUREMAP_LOG_LEVEL"
	defaultConfigPathPattern = "~/.config/measuremap/config.toml"
	projectConfigFileName    = "measuremap.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Batch: Batch{
			TableExtensions:  []string{defaultTableExtension},
			FactsExtensions:  []string{defaultFactsExtension},
			Pattern:          defaultPattern,
			Suffix:           defaultSuffix,
			CompressedSuffix: defaultCompressedSuffix,
			Incremental:      defaultIncremental,
			CheckPartsMatch:  defaultCheckPartsMatch,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
