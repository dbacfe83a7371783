package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	PDF      PDFConfig
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Upload   UploadConfig
	S3       S3Config
	DB       DBConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds text-generation settings with multi-provider fallback.
type LLMConfig struct {
	Primary     ProviderConfig `mapstructure:"primary"`
	Secondary   ProviderConfig `mapstructure:"secondary"`
	MaxRetries  int            `mapstructure:"max_retries"`
	Temperature float64        `mapstructure:"temperature"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (c *LLMConfig) SecondaryConfig() *ProviderConfig {
	if c.Secondary.Provider != "" {
		return &c.Secondary
	}
	return nil
}

// PDFConfig holds PDF text extraction settings. The binaries are the poppler
// and tesseract CLI tools invoked for extraction and OCR.
type PDFConfig struct {
	PdftotextBin  string `mapstructure:"pdftotext_bin"`
	PdftoppmBin   string `mapstructure:"pdftoppm_bin"`
	TesseractBin  string `mapstructure:"tesseract_bin"`
	OCRLanguage   string `mapstructure:"ocr_language"`
	OCRDPI        int    `mapstructure:"ocr_dpi"`
	MaxOCRPages   int    `mapstructure:"max_ocr_pages"`
	MinTextLength int    `mapstructure:"min_text_length"`
}

// ExtractConfig holds tunable thresholds for structured field extraction.
// BillMinAmount filters out sub-threshold numeric noise when matching bill
// totals and gates the regex-only short circuit.
type ExtractConfig struct {
	BillMinAmount  float64 `mapstructure:"bill_min_amount"`
	MaxPromptChars int     `mapstructure:"max_prompt_chars"`
}

// PipelineConfig holds claim pipeline settings.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxFiles      int   `mapstructure:"max_files"`
}

// S3Config holds AWS S3 settings for optional claim bundle archiving.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// DBConfig holds PostgreSQL connection settings for the optional decision
// audit log.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the CLAIMCHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAIMCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// LLM defaults
	v.SetDefault("llm.primary.provider", "gemini")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.model", "gemini-2.0-flash")
	v.SetDefault("llm.primary.timeout_secs", 120)
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.model", "")
	v.SetDefault("llm.secondary.timeout_secs", 120)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.temperature", 0.1)

	// PDF extraction defaults
	v.SetDefault("pdf.pdftotext_bin", "pdftotext")
	v.SetDefault("pdf.pdftoppm_bin", "pdftoppm")
	v.SetDefault("pdf.tesseract_bin", "tesseract")
	v.SetDefault("pdf.ocr_language", "eng")
	v.SetDefault("pdf.ocr_dpi", 300)
	v.SetDefault("pdf.max_ocr_pages", 5)
	v.SetDefault("pdf.min_text_length", 500)

	// Extraction defaults
	v.SetDefault("extract.bill_min_amount", 1000)
	v.SetDefault("extract.max_prompt_chars", 15000)

	// Pipeline defaults
	v.SetDefault("pipeline.concurrency", 4)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.max_files", 10)

	// S3 defaults (archiving disabled unless configured)
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "claimcheck-bundles")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// DB defaults (audit log disabled unless configured)
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claimcheck")
	v.SetDefault("db.password", "claimcheck_secret")
	v.SetDefault("db.name", "claimcheck_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "CLAIMCHECK_SERVER_PORT",
		"server.read_timeout":       "CLAIMCHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "CLAIMCHECK_SERVER_WRITE_TIMEOUT",
		"server.environment":        "CLAIMCHECK_SERVER_ENVIRONMENT",
		"llm.primary.provider":      "CLAIMCHECK_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":       "CLAIMCHECK_LLM_PRIMARY_API_KEY",
		"llm.primary.model":         "CLAIMCHECK_LLM_PRIMARY_MODEL",
		"llm.primary.timeout_secs":  "CLAIMCHECK_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":    "CLAIMCHECK_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":     "CLAIMCHECK_LLM_SECONDARY_API_KEY",
		"llm.secondary.model":       "CLAIMCHECK_LLM_SECONDARY_MODEL",
		"llm.secondary.timeout_secs": "CLAIMCHECK_LLM_SECONDARY_TIMEOUT_SECS",
		"llm.max_retries":           "CLAIMCHECK_LLM_MAX_RETRIES",
		"llm.temperature":           "CLAIMCHECK_LLM_TEMPERATURE",
		"pdf.pdftotext_bin":         "CLAIMCHECK_PDF_PDFTOTEXT_BIN",
		"pdf.pdftoppm_bin":          "CLAIMCHECK_PDF_PDFTOPPM_BIN",
		"pdf.tesseract_bin":         "CLAIMCHECK_PDF_TESSERACT_BIN",
		"pdf.ocr_language":          "CLAIMCHECK_PDF_OCR_LANGUAGE",
		"pdf.ocr_dpi":               "CLAIMCHECK_PDF_OCR_DPI",
		"pdf.max_ocr_pages":         "CLAIMCHECK_PDF_MAX_OCR_PAGES",
		"pdf.min_text_length":       "CLAIMCHECK_PDF_MIN_TEXT_LENGTH",
		"extract.bill_min_amount":   "CLAIMCHECK_EXTRACT_BILL_MIN_AMOUNT",
		"extract.max_prompt_chars":  "CLAIMCHECK_EXTRACT_MAX_PROMPT_CHARS",
		"pipeline.concurrency":      "CLAIMCHECK_PIPELINE_CONCURRENCY",
		"upload.max_file_size_mb":   "CLAIMCHECK_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_files":          "CLAIMCHECK_UPLOAD_MAX_FILES",
		"s3.enabled":                "CLAIMCHECK_S3_ENABLED",
		"s3.region":                 "CLAIMCHECK_S3_REGION",
		"s3.bucket":                 "CLAIMCHECK_S3_BUCKET",
		"s3.endpoint":               "CLAIMCHECK_S3_ENDPOINT",
		"s3.access_key":             "CLAIMCHECK_S3_ACCESS_KEY",
		"s3.secret_key":             "CLAIMCHECK_S3_SECRET_KEY",
		"s3.presign_expiry":         "CLAIMCHECK_S3_PRESIGN_EXPIRY",
		"db.enabled":                "CLAIMCHECK_DB_ENABLED",
		"db.host":                   "CLAIMCHECK_DB_HOST",
		"db.port":                   "CLAIMCHECK_DB_PORT",
		"db.user":                   "CLAIMCHECK_DB_USER",
		"db.password":               "CLAIMCHECK_DB_PASSWORD",
		"db.name":                   "CLAIMCHECK_DB_NAME",
		"db.sslmode":                "CLAIMCHECK_DB_SSLMODE",
		"db.max_open":               "CLAIMCHECK_DB_MAX_OPEN",
		"db.max_idle":               "CLAIMCHECK_DB_MAX_IDLE",
		"cors.allowed_origins":      "CLAIMCHECK_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CLAIMCHECK_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLAIMCHECK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.LLM = LLMConfig{
		Primary: ProviderConfig{
			Provider:    v.GetString("llm.primary.provider"),
			APIKey:      v.GetString("llm.primary.api_key"),
			Model:       v.GetString("llm.primary.model"),
			TimeoutSecs: v.GetInt("llm.primary.timeout_secs"),
		},
		Secondary: ProviderConfig{
			Provider:    v.GetString("llm.secondary.provider"),
			APIKey:      v.GetString("llm.secondary.api_key"),
			Model:       v.GetString("llm.secondary.model"),
			TimeoutSecs: v.GetInt("llm.secondary.timeout_secs"),
		},
		MaxRetries:  v.GetInt("llm.max_retries"),
		Temperature: v.GetFloat64("llm.temperature"),
	}
	cfg.PDF = PDFConfig{
		PdftotextBin:  v.GetString("pdf.pdftotext_bin"),
		PdftoppmBin:   v.GetString("pdf.pdftoppm_bin"),
		TesseractBin:  v.GetString("pdf.tesseract_bin"),
		OCRLanguage:   v.GetString("pdf.ocr_language"),
		OCRDPI:        v.GetInt("pdf.ocr_dpi"),
		MaxOCRPages:   v.GetInt("pdf.max_ocr_pages"),
		MinTextLength: v.GetInt("pdf.min_text_length"),
	}
	cfg.Extract = ExtractConfig{
		BillMinAmount:  v.GetFloat64("extract.bill_min_amount"),
		MaxPromptChars: v.GetInt("extract.max_prompt_chars"),
	}
	cfg.Pipeline = PipelineConfig{
		Concurrency: v.GetInt("pipeline.concurrency"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		MaxFiles:      v.GetInt("upload.max_files"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
