package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	speechmodel "github.com/mindbridge/checkin/backend/internal/model/speech"
)

type capturedRequest struct {
	key, contentType, format, body string
}

func newAzureStub(t *testing.T, status int, audio []byte) (*httptest.Server, *atomic.Int32, *capturedRequest) {
	t.Helper()
	var calls atomic.Int32
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		captured.key = r.Header.Get("Ocp-Apim-Subscription-Key")
		captured.contentType = r.Header.Get("Content-Type")
		captured.format = r.Header.Get("X-Microsoft-OutputFormat")
		captured.body = string(body)
		w.WriteHeader(status)
		_, _ = w.Write(audio)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, captured
}

func newTestService(t *testing.T, endpoint, key, region string) *Service {
	t.Helper()
	cfg := &speechmodel.SpeechConfig{
		SubscriptionKey: key,
		Region:          region,
		Endpoint:        endpoint,
		DefaultLanguage: "hi-IN",
		AudioDir:        filepath.Join(t.TempDir(), "audio"),
		Timeout:         2 * time.Second,
	}
	return NewService(cfg, nil, zerolog.Nop())
}

func TestSynthesizeWithoutCredentialsMakesNoRequest(t *testing.T) {
	srv, calls, _ := newAzureStub(t, http.StatusOK, []byte("mp3"))

	for _, tc := range []struct{ key, region string }{{"", "eastus"}, {"key", ""}, {" ", " "}} {
		svc := newTestService(t, srv.URL, tc.key, tc.region)
		resp := svc.Synthesize(context.Background(), speechmodel.TTSRequest{Text: "namaste"})
		assert.False(t, resp.Success)
		assert.Equal(t, "Azure TTS credentials missing", resp.Message)
	}
	assert.Zero(t, calls.Load())
}

func TestSynthesizeWritesAudioFile(t *testing.T) {
	srv, calls, captured := newAzureStub(t, http.StatusOK, []byte("ID3-fake-mp3"))
	svc := newTestService(t, srv.URL, "secret", "centralindia")

	resp := svc.Synthesize(context.Background(), speechmodel.TTSRequest{Text: "Tom & Jerry <3", Language: "en-GB"})

	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Text spoken in en-GB-LibbyNeural", resp.Message)
	assert.Equal(t, "en-GB-LibbyNeural", resp.Voice)
	assert.Regexp(t, `^output_[0-9a-f]{32}\.mp3$`, resp.AudioFile)
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, "secret", captured.key)
	assert.Equal(t, "application/ssml+xml", captured.contentType)
	assert.Equal(t, "audio-16khz-128kbitrate-mono-mp3", captured.format)
	assert.Contains(t, captured.body, "name='en-GB-LibbyNeural'")
	assert.Contains(t, captured.body, "Tom &amp; Jerry &lt;3")

	data, err := os.ReadFile(filepath.Join(svc.AudioDir(), resp.AudioFile))
	require.NoError(t, err)
	assert.Equal(t, "ID3-fake-mp3", string(data))
}

func TestSynthesizeDefaultsToHindiVoice(t *testing.T) {
	srv, _, captured := newAzureStub(t, http.StatusOK, []byte("mp3"))
	svc := newTestService(t, srv.URL, "secret", "centralindia")

	resp := svc.Synthesize(context.Background(), speechmodel.TTSRequest{Text: "aap kaise hain"})
	require.True(t, resp.Success)
	assert.Equal(t, "Text spoken in hi-IN-SwaraNeural", resp.Message)
	assert.Contains(t, captured.body, "xml:lang='hi-IN'")
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	srv, _, _ := newAzureStub(t, http.StatusUnauthorized, []byte("bad key"))
	svc := newTestService(t, srv.URL, "secret", "centralindia")

	resp := svc.Synthesize(context.Background(), speechmodel.TTSRequest{Text: "hello", Language: "en-US"})
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Message, "TTS Error: "), resp.Message)
	assert.Contains(t, resp.Message, "401")
	assert.Empty(t, resp.AudioFile)
}

func TestSynthesizeEmptyText(t *testing.T) {
	srv, calls, _ := newAzureStub(t, http.StatusOK, []byte("mp3"))
	svc := newTestService(t, srv.URL, "secret", "centralindia")

	resp := svc.Synthesize(context.Background(), speechmodel.TTSRequest{Text: "  "})
	assert.Equal(t, speechmodel.TTSResponse{Success: false, Message: "TTS Error: text is empty"}, resp)
	assert.Zero(t, calls.Load())
}

func TestResolveVoice(t *testing.T) {
	cases := map[string]string{
		"hi-IN": "hi-IN-SwaraNeural",
		"en-US": "en-US-AriaNeural",
		"en-GB": "en-GB-LibbyNeural",
		"es-ES": "es-ES-ElviraNeural",
		"fr-FR": "fr-FR-DeniseNeural",
		"de-DE": DefaultVoice,
		"":      DefaultVoice,
	}
	for lang, want := range cases {
		assert.Equal(t, want, ResolveVoice(lang), lang)
	}
	assert.Len(t, SupportedLanguages(), 5)
}

func TestResolveCredentialsBuildsRegionalEndpoint(t *testing.T) {
	key, endpoint, err := resolveCredentials(&speechmodel.SpeechConfig{SubscriptionKey: " k ", Region: "westeurope"})
	require.NoError(t, err)
	assert.Equal(t, "k", key)
	assert.Equal(t, "https://westeurope.tts.speech.microsoft.com/cognitiveservices/v1", endpoint)

	_, _, err = resolveCredentials(nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
