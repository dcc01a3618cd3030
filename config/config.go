package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/duration"
	"github.com/spiffcs/lockstale/internal/inactivity"
	"github.com/spiffcs/lockstale/internal/model"
	"github.com/spiffcs/lockstale/internal/urlutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration as read from disk and
// the Action inputs. Unset fields fall back to defaults in Resolve.
type Config struct {
	Repository      string `yaml:"repository,omitempty" json:"repository,omitempty"`
	RateLimitBuffer *int   `yaml:"rate_limit_buffer,omitempty" json:"rate_limit_buffer,omitempty"`
	APIURL          string `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	Format          string `yaml:"format,omitempty" json:"format,omitempty"`
	History         *bool  `yaml:"history,omitempty" json:"history,omitempty"`
	MetricsFile     string `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`

	Issues       *CategoryOverrides `yaml:"issues,omitempty" json:"issues,omitempty"`
	PullRequests *CategoryOverrides `yaml:"pull_requests,omitempty" json:"pull_requests,omitempty"`
}

// CategoryOverrides holds the per-category settings.
type CategoryOverrides struct {
	// InactiveDays accepts a plain number of days or a duration such as 12w.
	InactiveDays *string `yaml:"inactive_days,omitempty" json:"inactive_days,omitempty"`

	// LockReason may be set to "" to lock without a reason.
	LockReason *string `yaml:"lock_reason,omitempty" json:"lock_reason,omitempty"`
}

// Settings is the validated configuration a sweep runs with.
type Settings struct {
	Repository   model.Repository
	Buffer       int
	Issues       inactivity.Policy
	PullRequests inactivity.Policy
	APIURL       string
	Format       string
	History      bool
	MetricsFile  string
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".lockstale"
	}
	return filepath.Join(configDir, "lockstale")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".lockstale.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .lockstale.yaml config on top (local values take precedence).
func Load() (*Config, error) {
	cfg := &Config{}

	global, err := readFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(LocalConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load local config: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	return cfg, nil
}

// readFile returns nil, nil when path does not exist.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.Repository != "" {
		result.Repository = local.Repository
	}
	if local.RateLimitBuffer != nil {
		result.RateLimitBuffer = local.RateLimitBuffer
	}
	if local.APIURL != "" {
		result.APIURL = local.APIURL
	}
	if local.Format != "" {
		result.Format = local.Format
	}
	if local.History != nil {
		result.History = local.History
	}
	if local.MetricsFile != "" {
		result.MetricsFile = local.MetricsFile
	}

	result.Issues = mergeCategory(global.Issues, local.Issues)
	result.PullRequests = mergeCategory(global.PullRequests, local.PullRequests)

	return &result
}

func mergeCategory(global, local *CategoryOverrides) *CategoryOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &CategoryOverrides{}

	if global != nil {
		result.InactiveDays = global.InactiveDays
		result.LockReason = global.LockReason
	}
	if local != nil {
		if local.InactiveDays != nil {
			result.InactiveDays = local.InactiveDays
		}
		if local.LockReason != nil {
			result.LockReason = local.LockReason
		}
	}

	if result.InactiveDays == nil && result.LockReason == nil {
		return nil
	}
	return result
}

// ApplyActionInputs overlays GitHub Action inputs, which the runner exposes
// as INPUT_<NAME> environment variables. lookup is normally os.LookupEnv.
// Blank inputs are ignored except lock reasons, where a blank value that is
// present means the lock carries no reason.
func (c *Config) ApplyActionInputs(lookup func(string) (string, bool)) error {
	input := func(name string) (string, bool) {
		v, ok := lookup("INPUT_" + strings.ToUpper(name))
		return strings.TrimSpace(v), ok
	}

	if v, _ := input("repository"); v != "" {
		c.Repository = v
	}
	if v, _ := input("rate-limit-buffer"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid rate-limit-buffer input %q: %w", v, err)
		}
		c.RateLimitBuffer = &n
	}
	if v, _ := input("api-url"); v != "" {
		c.APIURL = v
	}
	if v, _ := input("metrics-file"); v != "" {
		c.MetricsFile = v
	}

	if v, _ := input("issue-inactive-days"); v != "" {
		c.SetInactiveDays(model.CategoryIssues, v)
	}
	if v, _ := input("pr-inactive-days"); v != "" {
		c.SetInactiveDays(model.CategoryPullRequests, v)
	}
	if v, ok := input("issue-lock-reason"); ok {
		c.SetLockReason(model.CategoryIssues, v)
	}
	if v, ok := input("pr-lock-reason"); ok {
		c.SetLockReason(model.CategoryPullRequests, v)
	}

	return nil
}

func (c *Config) issues() *CategoryOverrides {
	if c.Issues == nil {
		c.Issues = &CategoryOverrides{}
	}
	return c.Issues
}

func (c *Config) pullRequests() *CategoryOverrides {
	if c.PullRequests == nil {
		c.PullRequests = &CategoryOverrides{}
	}
	return c.PullRequests
}

// SetInactiveDays overrides the threshold for one category.
func (c *Config) SetInactiveDays(category model.Category, days string) {
	if category == model.CategoryPullRequests {
		c.pullRequests().InactiveDays = &days
		return
	}
	c.issues().InactiveDays = &days
}

// SetLockReason overrides the lock reason for one category.
func (c *Config) SetLockReason(category model.Category, reason string) {
	if category == model.CategoryPullRequests {
		c.pullRequests().LockReason = &reason
		return
	}
	c.issues().LockReason = &reason
}

// Resolve validates the configuration and fills in defaults.
// When no repository is configured, GITHUB_REPOSITORY is used.
func (c *Config) Resolve() (*Settings, error) {
	s := &Settings{
		Buffer:      constants.DefaultRateLimitBuffer,
		APIURL:      constants.DefaultAPIURL,
		Format:      "table",
		History:     true,
		MetricsFile: c.MetricsFile,
	}

	repoName := c.Repository
	if repoName == "" {
		repoName = os.Getenv("GITHUB_REPOSITORY")
	}
	if repoName == "" {
		return nil, fmt.Errorf("no repository configured (use --repo or set GITHUB_REPOSITORY)")
	}
	repo, err := urlutil.ParseRepository(repoName)
	if err != nil {
		return nil, err
	}
	s.Repository = repo

	if c.RateLimitBuffer != nil {
		if *c.RateLimitBuffer < 0 {
			return nil, fmt.Errorf("rate_limit_buffer must not be negative, got %d", *c.RateLimitBuffer)
		}
		s.Buffer = *c.RateLimitBuffer
	}
	if c.APIURL != "" {
		s.APIURL = c.APIURL
	}
	if c.Format != "" {
		s.Format = c.Format
	}
	if c.History != nil {
		s.History = *c.History
	}

	if s.Issues, err = resolvePolicy(model.CategoryIssues, c.Issues); err != nil {
		return nil, err
	}
	if s.PullRequests, err = resolvePolicy(model.CategoryPullRequests, c.PullRequests); err != nil {
		return nil, err
	}

	return s, nil
}

func resolvePolicy(category model.Category, o *CategoryOverrides) (inactivity.Policy, error) {
	p := inactivity.Policy{
		Category:     category,
		InactiveDays: constants.DefaultInactiveDays,
		Reason:       model.LockReason(constants.DefaultLockReason),
	}
	if o == nil {
		return p, nil
	}

	if o.InactiveDays != nil {
		days, err := duration.ParseDays(*o.InactiveDays)
		if err != nil {
			return p, fmt.Errorf("invalid %s inactive_days: %w", category, err)
		}
		p.InactiveDays = days
	}
	if o.LockReason != nil {
		reason, err := model.ParseLockReason(*o.LockReason)
		if err != nil {
			return p, fmt.Errorf("invalid %s lock_reason: %w", category, err)
		}
		p.Reason = reason
	}

	return p, nil
}

// GetGitHubToken returns the GitHub token from the Action's github-token
// input or the GITHUB_TOKEN environment variable.
// Tokens are only read from the environment, never from config files.
func (c *Config) GetGitHubToken() string {
	if token := strings.TrimSpace(os.Getenv("INPUT_GITHUB-TOKEN")); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	buffer := constants.DefaultRateLimitBuffer
	history := true
	days := strconv.Itoa(constants.DefaultInactiveDays)
	reason := constants.DefaultLockReason

	return &Config{
		RateLimitBuffer: &buffer,
		APIURL:          constants.DefaultAPIURL,
		Format:          "table",
		History:         &history,
		Issues: &CategoryOverrides{
			InactiveDays: &days,
			LockReason:   &reason,
		},
		PullRequests: &CategoryOverrides{
			InactiveDays: &days,
			LockReason:   &reason,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# lockstale configuration file
# See: lockstale config defaults  (for all available options)

# Repository to sweep (defaults to $GITHUB_REPOSITORY)
# repository: owner/repo

# Requests to leave untouched for other automation
rate_limit_buffer: 100

# Inactivity thresholds accept days or durations such as 12w, 3mo, 1y
issues:
  inactive_days: 90
  lock_reason: resolved

pull_requests:
  inactive_days: 90
  lock_reason: resolved

# Write Prometheus metrics for the node_exporter textfile collector (optional)
# metrics_file: /var/lib/node_exporter/lockstale.prom
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
