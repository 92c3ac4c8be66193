package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var validDrivers = []string{"sqlite3", "postgres", "memory"}

// Validate 检查启动前就能发现的配置错误。未知的 AI_PROVIDER 不在此拒绝，运行时按回退处理。
func (c *Config) Validate() error {
	var errs []error

	port := strings.TrimSpace(c.Server.Port)
	if port == "" || strings.Contains(port, " ") {
		errs = append(errs, fmt.Errorf("invalid PORT value: %q", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive"))
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be one of %v, got %q", validDrivers, c.Database.Driver))
	}
	if c.Database.Driver == "sqlite3" && isSQLiteMemoryURL(c.Database.URL) {
		errs = append(errs, fmt.Errorf("DATABASE_URL %q is an in-memory SQLite database, use DATABASE_DRIVER=memory instead", c.Database.URL))
	}
	if c.Database.Driver != "memory" && strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required for driver %s", c.Database.Driver))
	}

	if c.AI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("AI_TIMEOUT must be positive"))
	}
	if c.AI.OpenAIMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("OPENAI_MAX_TOKENS must be positive"))
	}
	if c.Speech.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("TTS_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// isSQLiteMemoryURL 识别 ":memory:" 与 "file::memory:" 形式的地址。
func isSQLiteMemoryURL(url string) bool {
	url = strings.TrimSpace(url)
	return strings.HasPrefix(url, ":memory:") || strings.Contains(url, "mode=memory") || strings.HasPrefix(url, "file::memory:")
}
