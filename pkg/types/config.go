package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "esa-pipeline/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HubConfig holds settings for fetching wmt24pp reference data from the
// Hugging Face hub.
type HubConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the hub base URL (default "https://huggingface.co").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token is an optional bearer token for authenticated hub access.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// CacheDir is the root directory for downloaded reference files.
	// Derived from HF_HOME when empty.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Offline disables network access; only cached files are used.
	Offline bool `json:"offline" yaml:"offline"`
}

// IndexConfig holds settings for the reference index database.
type IndexConfig struct {
	// IndexDir is the directory holding references.db. Derived from
	// HF_HOME when empty.
	IndexDir string `json:"index_dir" yaml:"index_dir"`
}

// ConvertConfig holds settings for the jsonl-to-tsv conversion stage.
type ConvertConfig struct {
	// InputJSONL is the path to the WMT24 ESA annotations file.
	InputJSONL string `json:"input_jsonl" yaml:"input_jsonl"`

	// OutputTSV is the path the generated TSV is written to.
	OutputTSV string `json:"output_tsv" yaml:"output_tsv"`

	// FilterInvalidSpans drops whole records that contain at least one
	// invalid error span instead of passing the spans through.
	FilterInvalidSpans bool `json:"filter_invalid_spans" yaml:"filter_invalid_spans"`

	// Seed initializes the RNG used for span augmentation (default 42).
	Seed int64 `json:"seed" yaml:"seed"`

	// ReportDir is the directory for YAML run reports. When empty the
	// report is written next to the output TSV.
	ReportDir string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`
}

// BootstrapConfig holds settings for the environment bootstrap stage.
type BootstrapConfig struct {
	// CacheHomeVar is the environment variable naming the cache root
	// (default "HF_HOME").
	CacheHomeVar string `json:"cache_home_var" yaml:"cache_home_var"`

	// ScriptPath is the external converter script handed to the runner
	// tool (default "create_tsv_from_wmt24_esa.py").
	ScriptPath string `json:"script_path" yaml:"script_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Hub       HubConfig       `json:"hub" yaml:"hub"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Convert   ConvertConfig   `json:"convert" yaml:"convert"`
	Bootstrap BootstrapConfig `json:"bootstrap" yaml:"bootstrap"`
}
