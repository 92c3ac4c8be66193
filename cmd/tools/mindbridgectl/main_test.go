package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/service/ai"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		AI:       config.AIConfig{Provider: ai.ProviderGemini, Timeout: time.Second},
		Speech:   config.SpeechConfig{DefaultLanguage: "hi-IN", AudioDir: t.TempDir(), Timeout: time.Second},
	}
}

func runJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(t), zerolog.Nop(), "", args, &out))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	return decoded
}

func TestRunDetect(t *testing.T) {
	got := runJSON(t, "detect", "I can't take it anymore")
	assert.Equal(t, true, got["crisis_detected"])
	assert.Equal(t, "pattern", got["kind"])
}

func TestRunChatWithoutCredentials(t *testing.T) {
	got := runJSON(t, "chat", "I had a good day")
	assert.Equal(t, false, got["crisis_detected"])
	assert.Equal(t, ai.FallbackResponseEN, got["response"])
}

func TestRunCheckin(t *testing.T) {
	got := runJSON(t, "checkin", "3", "okay")
	assert.Equal(t, float64(3), got["mood"])
	assert.Equal(t, ai.FallbackResponseEN, got["response"])
}

func TestRunSpeakWithoutCredentials(t *testing.T) {
	got := runJSON(t, "speak", "namaste")
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Azure TTS credentials missing", got["message"])
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(t)
	assert.Error(t, run(context.Background(), cfg, zerolog.Nop(), "", []string{"detect"}, &out))
	assert.Error(t, run(context.Background(), cfg, zerolog.Nop(), "", []string{"unknown", "x"}, &out))
	assert.Error(t, run(context.Background(), cfg, zerolog.Nop(), "", []string{"checkin", "x", "note"}, &out))
	assert.Error(t, run(context.Background(), cfg, zerolog.Nop(), "", []string{"checkin", "3"}, &out))
}

func TestExecuteExitCodes(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("AI_PROVIDER", ai.ProviderGemini)

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, execute([]string{"detect", "I want to die"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), `"crisis_detected": true`)

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 2, execute([]string{"unknown", "x"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `未知命令 "unknown"`)
	assert.Contains(t, stderr.String(), "用法: mindbridgectl")
	assert.Empty(t, stdout.String())

	stderr.Reset()
	assert.Equal(t, 2, execute([]string{"-no-such-flag"}, &stdout, &stderr))

	stderr.Reset()
	t.Setenv("AI_TIMEOUT", "0s")
	assert.Equal(t, 1, execute([]string{"detect", "hello"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "AI_TIMEOUT must be positive")
}
