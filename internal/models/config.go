package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR fallback chain config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`
}

// OCRConfig configures the text-extraction fallback chain
type OCRConfig struct {
	// External OCR service upload endpoint
	Endpoint string `yaml:"endpoint"`

	// Size limits in bytes. Files above MaxFileSize are rejected outright;
	// files above ExternalMaxSize skip the external service and go straight
	// to the vision model.
	MaxFileSize     int64 `yaml:"max_file_size"`
	ExternalMaxSize int64 `yaml:"external_max_size"`
	LargeFileSize   int64 `yaml:"large_file_size"`

	// Retry policy
	MaxAttempts int `yaml:"max_attempts"`

	// Timeouts in seconds
	ExternalTimeout int `yaml:"external_timeout"`
	VisionTimeout   int `yaml:"vision_timeout"`
	RequestTimeout  int `yaml:"request_timeout"`
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "openai" or "gemini"
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url,omitempty"` // For custom endpoints
	Model       string `yaml:"model"`              // Default: "gpt-4o"
	VisionModel string `yaml:"vision_model"`       // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}
