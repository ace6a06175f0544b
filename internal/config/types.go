package config

// ProviderType identifies an embedding or rerank provider implementation.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	ProviderCohere ProviderType = "cohere"
)

// InjectionType selects how retrieved passages are injected into an
// outgoing LLM request.
type InjectionType string

const (
	// InjectionSystem inserts the retrieved block as a system-role message
	// and prunes older system messages from the conversation history.
	InjectionSystem InjectionType = "system"
	// InjectionPrompt appends the retrieved block to the user prompt.
	InjectionPrompt InjectionType = "prompt"
)

// EmbeddingProviderConfig declares one embedding provider the engine may use.
type EmbeddingProviderConfig struct {
	ID         string       `yaml:"id" koanf:"id"`
	Type       ProviderType `yaml:"type" koanf:"type"`
	Model      string       `yaml:"model" koanf:"model"`
	APIKeyEnv  string       `yaml:"api_key_env" koanf:"api_key_env"`
	BaseURL    string       `yaml:"base_url" koanf:"base_url"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
}

// RerankProviderConfig declares one rerank provider.
type RerankProviderConfig struct {
	ID        string       `yaml:"id" koanf:"id"`
	Type      ProviderType `yaml:"type" koanf:"type"`
	Model     string       `yaml:"model" koanf:"model"`
	APIKeyEnv string       `yaml:"api_key_env" koanf:"api_key_env"`
	BaseURL   string       `yaml:"base_url" koanf:"base_url"`
}

// GatewayConfig holds the local HTTP chat gateway settings.
type GatewayConfig struct {
	Enabled  bool `yaml:"enabled" koanf:"enabled"`
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// DiscordConfig holds the Discord platform adapter settings.
type DiscordConfig struct {
	Enabled  bool   `yaml:"enabled" koanf:"enabled"`
	TokenEnv string `yaml:"token_env" koanf:"token_env"`
}

// Config is the top-level filerag configuration, corresponding to .filerag.yml.
type Config struct {
	// DataDir holds the usage ledger database and the per-slot vector
	// index tree (data_dir/session/conversation/slot/).
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// Chunking.
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	// Retrieval. FetchK is the candidate pool pulled before reranking;
	// RetrieveTopK is the final number of chunks surfaced.
	RetrieveTopK int  `yaml:"retrieve_top_k" koanf:"retrieve_top_k"`
	FetchK       int  `yaml:"fetch_k" koanf:"fetch_k"`
	EnableRerank bool `yaml:"enable_rerank" koanf:"enable_rerank"`

	// File lifecycle.
	FileRetentionTime  int      `yaml:"file_retention_time" koanf:"file_retention_time"` // minutes
	MaxFileSize        int      `yaml:"max_file_size" koanf:"max_file_size"`             // megabytes
	FileMaxRounds      int      `yaml:"file_max_rounds" koanf:"file_max_rounds"`
	SupportedFileTypes []string `yaml:"supported_file_types" koanf:"supported_file_types"`
	CleanupInterval    int      `yaml:"cleanup_interval" koanf:"cleanup_interval"` // minutes

	// Group handling. EnabledGroups entries may be glob patterns; an empty
	// list allows all groups.
	EnableGroupFileProcessing bool     `yaml:"enable_group_file_processing" koanf:"enable_group_file_processing"`
	EnabledGroups             []string `yaml:"enabled_groups" koanf:"enabled_groups"`

	// Injection.
	InjectionType           InjectionType `yaml:"injection_type" koanf:"injection_type"`
	SystemContextKeepRounds int           `yaml:"system_context_keep_rounds" koanf:"system_context_keep_rounds"`
	NotifyOnNoMatch         bool          `yaml:"notify_on_no_match" koanf:"notify_on_no_match"`

	// Provider selection. An empty ID means "first capable declared provider".
	EmbeddingProviderID string                    `yaml:"embedding_provider_id" koanf:"embedding_provider_id"`
	RerankProviderID    string                    `yaml:"rerank_provider_id" koanf:"rerank_provider_id"`
	EmbeddingProviders  []EmbeddingProviderConfig `yaml:"embedding_providers" koanf:"embedding_providers"`
	RerankProviders     []RerankProviderConfig    `yaml:"rerank_providers" koanf:"rerank_providers"`

	Gateway GatewayConfig `yaml:"gateway" koanf:"gateway"`
	Discord DiscordConfig `yaml:"discord" koanf:"discord"`
}
