package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "~/.shirabe/shirabe.db"
	}
	if cfg.Match.DefaultMeasure == "" {
		cfg.Match.DefaultMeasure = "levenshtein"
	}
	if cfg.Match.DefaultThreshold == nil {
		threshold := 2
		cfg.Match.DefaultThreshold = &threshold
	}
	if cfg.Match.ScanWorkers == 0 {
		cfg.Match.ScanWorkers = 4
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
