// Package config provides configuration loading and validation for the CLI.
//
// Secrets and account identifiers come from the environment (a .env file is
// loaded by main before Load runs); static settings such as endpoint URLs and
// output paths come from config.yaml. The loaded Config is constructed once at
// startup and passed into each component.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the YAML configuration file name, resolved relative to the
// repository root.
const DefaultFile = "config.yaml"

// Endpoints holds the base URLs of the consumed platform APIs.
type Endpoints struct {
	Codeforces string `yaml:"codeforces" validate:"required,url"`
	LeetCode   string `yaml:"leetcode" validate:"required,url"`
	ChessCom   string `yaml:"chesscom" validate:"required,url"`
	Steam      string `yaml:"steam" validate:"required,url"`
	Perplexity string `yaml:"perplexity" validate:"required,url"`
}

// Paths holds directory and file locations relative to the repository root.
type Paths struct {
	Temp          string `yaml:"temp" validate:"required"`
	Shared        string `yaml:"shared" validate:"required"`
	TokenFile     string `yaml:"token_file" validate:"required"`
	CommitMessage string `yaml:"commit_message" validate:"required"`
}

// Outputs holds the per-platform report file paths.
type Outputs struct {
	Codeforces string `yaml:"codeforces" validate:"required"`
	LeetCode   string `yaml:"leetcode" validate:"required"`
	Steam      string `yaml:"steam" validate:"required"`
	YouTube    string `yaml:"youtube" validate:"required"`
	ChessCom   string `yaml:"chesscom" validate:"required"`
}

// Cloud holds Google API settings that are not secret.
type Cloud struct {
	Scopes []string `yaml:"google_scopes" validate:"required,min=1"`
}

// AuthFiles holds the side files used by the interactive authorization flow.
// Both live under the temp directory.
type AuthFiles struct {
	URLFile  string `yaml:"url_file" validate:"required"`
	CodeFile string `yaml:"code_file" validate:"required"`
}

// PerplexitySettings holds the non-secret Perplexity request settings.
type PerplexitySettings struct {
	Model        string `yaml:"model" validate:"required"`
	SystemPrompt string `yaml:"system_prompt" validate:"required"`
	InputFile    string `yaml:"input_file" validate:"required"`
	OutputFile   string `yaml:"output_file" validate:"required"`
}

// Excluded lists paths skipped by repository-wide file walks.
type Excluded struct {
	Dirs  []string `yaml:"dirs"`
	Files []string `yaml:"files"`
}

// fileConfig is the shape of config.yaml.
type fileConfig struct {
	Endpoints  Endpoints          `yaml:"api_endpoints"`
	Paths      Paths              `yaml:"paths"`
	Outputs    Outputs            `yaml:"outputs"`
	Cloud      Cloud              `yaml:"cloud"`
	Auth       AuthFiles          `yaml:"auth"`
	Perplexity PerplexitySettings `yaml:"perplexity"`
	Excluded   Excluded           `yaml:"excluded"`
}

// GoogleOAuth holds the OAuth client settings for the user authorization flow.
type GoogleOAuth struct {
	ClientID     string
	ClientSecret string
	ProjectID    string
	AuthURI      string
	TokenURI     string
	RedirectURI  string
	// ServiceAccountFile, when set and present on disk, takes precedence
	// over the user flow.
	ServiceAccountFile string
}

// Config is the fully resolved configuration for one process run.
type Config struct {
	RootDir string

	Endpoints  Endpoints
	Paths      Paths
	Outputs    Outputs
	Cloud      Cloud
	Auth       AuthFiles
	Perplexity PerplexitySettings
	Excluded   Excluded

	// Platform identifiers and secrets, from the environment.
	CodeforcesHandle    string
	CodeforcesAPIKey    string
	CodeforcesAPISecret string
	LeetCodeUsername    string
	ChessComUsername    string
	SteamID             string
	SteamAPIKey         string
	YouTubeChannelID    string
	PerplexityAPIKey    string

	// Google Doc targets, one per platform report.
	DocIDCodeforces string
	DocIDLeetCode   string
	DocIDSteam      string
	DocIDYouTube    string
	DocIDChessCom   string

	Google GoogleOAuth

	// LocalSyncDir is the destination root for the local mirror; empty
	// disables the mirror.
	LocalSyncDir string

	// RetryInitialDelay seeds the sync engine's exponential backoff.
	RetryInitialDelay time.Duration
	// RetryMaxAttempts caps sync retries.
	RetryMaxAttempts int
}

// Load reads config.yaml under rootDir, expands ${VAR} references, resolves
// environment-provided secrets, and validates the result.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, DefaultFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := &Config{
		RootDir:    rootDir,
		Endpoints:  fc.Endpoints,
		Paths:      fc.Paths,
		Outputs:    fc.Outputs,
		Cloud:      fc.Cloud,
		Auth:       fc.Auth,
		Perplexity: fc.Perplexity,
		Excluded:   fc.Excluded,

		CodeforcesHandle:    os.Getenv("CODEFORCES_ID"),
		CodeforcesAPIKey:    os.Getenv("CODEFORCES_API_KEY"),
		CodeforcesAPISecret: os.Getenv("CODEFORCES_API_SECRET"),
		LeetCodeUsername:    os.Getenv("LEETCODE_ID"),
		ChessComUsername:    os.Getenv("CHESSCOM_ID"),
		SteamID:             os.Getenv("STEAM_ID"),
		SteamAPIKey:         os.Getenv("STEAM_API_KEY"),
		YouTubeChannelID:    os.Getenv("YOUTUBE_CHANNEL_ID"),
		PerplexityAPIKey:    os.Getenv("PERPLEXITY_API_KEY"),

		DocIDCodeforces: os.Getenv("GOOGLE_DOC_CODEFORCES_ID"),
		DocIDLeetCode:   os.Getenv("GOOGLE_DOC_LEETCODE_ID"),
		DocIDSteam:      os.Getenv("GOOGLE_DOC_STEAM_ID"),
		DocIDYouTube:    os.Getenv("GOOGLE_DOC_YOUTUBE_ID"),
		DocIDChessCom:   os.Getenv("GOOGLE_DOC_CHESSCOM_ID"),

		Google: GoogleOAuth{
			ClientID:           os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:       os.Getenv("GOOGLE_CLIENT_SECRET"),
			ProjectID:          os.Getenv("GOOGLE_PROJECT_ID"),
			AuthURI:            os.Getenv("GOOGLE_AUTH_URI"),
			TokenURI:           os.Getenv("GOOGLE_TOKEN_URI"),
			RedirectURI:        os.Getenv("GOOGLE_REDIRECT_URIS"),
			ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		},

		LocalSyncDir: os.Getenv("LOCAL_SYNC_DIR"),

		RetryInitialDelay: time.Second,
		RetryMaxAttempts:  5,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the static (YAML-provided) portion of the configuration.
// Per-workflow identifier checks happen in the generators so that only the
// invoked workflow's settings are required.
func (c *Config) Validate() error {
	validate := validator.New()
	for name, section := range map[string]any{
		"api_endpoints": c.Endpoints,
		"paths":         c.Paths,
		"outputs":       c.Outputs,
		"cloud":         c.Cloud,
		"auth":          c.Auth,
		"perplexity":    c.Perplexity,
	} {
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("config error in %s: %w", name, err)
		}
	}
	return nil
}

// Abs resolves a config-relative path against the repository root.
func (c *Config) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.RootDir, rel)
}

// TempDir returns the absolute temp directory path.
func (c *Config) TempDir() string { return c.Abs(c.Paths.Temp) }

// SharedDir returns the absolute shared output directory path.
func (c *Config) SharedDir() string { return c.Abs(c.Paths.Shared) }

// TokenFile returns the absolute OAuth token file path.
func (c *Config) TokenFile() string { return c.Abs(c.Paths.TokenFile) }

// AuthURLFile returns the absolute path of the authorization URL side file.
func (c *Config) AuthURLFile() string {
	return filepath.Join(c.TempDir(), c.Auth.URLFile)
}

// AuthCodeFile returns the absolute path of the authorization code side file.
func (c *Config) AuthCodeFile() string {
	return filepath.Join(c.TempDir(), c.Auth.CodeFile)
}
