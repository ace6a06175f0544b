package config

import "time"

// DefaultSupportedTypes lists the file extensions accepted for ingestion by
// default: documents, spreadsheets, presentations, source code, markup,
// config files and plain text. The empty entry admits extensionless files,
// which are treated as plain text after content sniffing.
var DefaultSupportedTypes = []string{
	// Documents.
	"pdf", "docx", "doc", "rtf", "odt",
	// Spreadsheets.
	"xlsx", "xls", "ods", "csv",
	// Presentations.
	"pptx", "ppt", "odp",
	// Source code.
	"py", "java", "cpp", "c", "h", "hpp", "cs", "js", "ts", "php", "rb",
	"go", "rs", "swift", "kt", "scala", "sh", "bash", "ps1", "bat", "cmd", "vbs",
	// Markup.
	"html", "htm", "xml", "json", "yaml", "yml", "md", "markdown",
	// Config.
	"ini", "cfg", "conf", "properties", "env",
	// Queries.
	"sql",
	// Plain text.
	"txt", "log", "",
	// Build/project files.
	"toml", "lock", "gitignore",
	// Web shortcuts.
	"url", "webloc",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:                   "data",
		ChunkSize:                 512,
		ChunkOverlap:              100,
		RetrieveTopK:              5,
		FetchK:                    20,
		EnableRerank:              true,
		FileRetentionTime:         60,
		MaxFileSize:               100,
		FileMaxRounds:             5,
		SupportedFileTypes:        DefaultSupportedTypes,
		CleanupInterval:           15,
		EnableGroupFileProcessing: true,
		InjectionType:             InjectionSystem,
		SystemContextKeepRounds:   2,
		EmbeddingProviders: []EmbeddingProviderConfig{
			{
				ID:        "openai-small",
				Type:      ProviderOpenAI,
				Model:     "text-embedding-3-small",
				APIKeyEnv: "OPENAI_API_KEY",
			},
		},
		Gateway: GatewayConfig{
			Enabled: true,
			Port:    8742,
		},
	}
}

// RetentionDuration returns the file retention window as a duration.
func (c *Config) RetentionDuration() time.Duration {
	return time.Duration(c.FileRetentionTime) * time.Minute
}

// CleanupIntervalDuration returns the reaper interval as a duration.
func (c *Config) CleanupIntervalDuration() time.Duration {
	return time.Duration(c.CleanupInterval) * time.Minute
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSize) * 1024 * 1024
}

// TypeSupported reports whether the given extension (lowercase, no dot) is
// in the supported set.
func (c *Config) TypeSupported(ext string) bool {
	for _, t := range c.SupportedFileTypes {
		if t == ext {
			return true
		}
	}
	return false
}
