package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/ytget/lecturegrab/internal/capture"
	"github.com/ytget/lecturegrab/internal/model"
	"github.com/ytget/lecturegrab/internal/platform"
)

// Default values
const (
	DefaultPortalURL         = "https://toledo.kuleuven.be"
	DefaultOrigin            = "https://kaltura-kaf.edu.kuleuven.cloud"
	DefaultDownloadDir       = "downloads"
	DefaultFetcher           = "yt-dlp"
	DefaultTranscriptionsDir = "transcriptions"
	DefaultCacheDir          = "transcriptions/_cache"
	DefaultWhisperCommand    = "whisper"
	DefaultWhisperModel      = "medium"
	DefaultWhisperLanguage   = "nl"
	DefaultWhisperDevice     = "cuda"
	DefaultFFmpeg            = "ffmpeg"
	DefaultFFprobe           = "ffprobe"
	DefaultStableSeconds     = 2
)

// File is the TOML configuration file. Every field has a default, so an
// empty or missing file is valid.
type File struct {
	Portal     Portal     `toml:"portal"`
	Capture    Capture    `toml:"capture"`
	Download   Download   `toml:"download"`
	Transcribe Transcribe `toml:"transcribe"`
}

// Portal describes the site lectures are captured from
type Portal struct {
	URL         string `toml:"url"`
	Origin      string `toml:"origin"`
	CookiesFile string `toml:"cookies_file"`
	UserAgent   string `toml:"user_agent"`
}

// Capture configures network capture and source matching
type Capture struct {
	PerformanceLog string `toml:"performance_log"`
	ManifestMarker string `toml:"manifest_marker"`
	ProviderMarker string `toml:"provider_marker"`
	DirectMarker   string `toml:"direct_marker"`
}

// Download configures the stream fetcher
type Download struct {
	Dir       string   `toml:"dir"`
	Fetcher   string   `toml:"fetcher"`
	ExtraArgs []string `toml:"extra_args"`
}

// Transcribe configures the transcriber
type Transcribe struct {
	InputDir      string `toml:"input_dir"`
	OutputDir     string `toml:"output_dir"`
	CacheDir      string `toml:"cache_dir"`
	Command       string `toml:"command"`
	Model         string `toml:"model"`
	Language      string `toml:"language"`
	Device        string `toml:"device"`
	FFmpeg        string `toml:"ffmpeg"`
	FFprobe       string `toml:"ffprobe"`
	StableSeconds int    `toml:"stable_seconds"`
}

// DefaultFile returns the configuration used when no file is given
func DefaultFile() File {
	markers := capture.DefaultMarkers()
	return File{
		Portal: Portal{
			URL:    DefaultPortalURL,
			Origin: DefaultOrigin,
		},
		Capture: Capture{
			ManifestMarker: markers.Manifest,
			ProviderMarker: markers.Provider,
			DirectMarker:   markers.Direct,
		},
		Download: Download{
			Dir:     DefaultDownloadDir,
			Fetcher: DefaultFetcher,
		},
		Transcribe: Transcribe{
			InputDir:      DefaultDownloadDir,
			OutputDir:     DefaultTranscriptionsDir,
			CacheDir:      DefaultCacheDir,
			Command:       DefaultWhisperCommand,
			Model:         DefaultWhisperModel,
			Language:      DefaultWhisperLanguage,
			Device:        DefaultWhisperDevice,
			FFmpeg:        DefaultFFmpeg,
			FFprobe:       DefaultFFprobe,
			StableSeconds: DefaultStableSeconds,
		},
	}
}

// LoadFile reads path over the defaults. An empty path returns the defaults.
func LoadFile(path string) (File, error) {
	cfg := DefaultFile()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	if err := ParseFile(data, &cfg); err != nil {
		return cfg, goerr.Wrap(err, "invalid config file", goerr.V("path", path))
	}
	return cfg, nil
}

// ParseFile decodes TOML data into cfg, keeping fields the data leaves out
func ParseFile(data []byte, cfg *File) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return goerr.Wrap(err, "failed to decode TOML")
	}
	return cfg.Validate()
}

// Validate checks required fields
func (f File) Validate() error {
	switch {
	case f.Download.Dir == "":
		return goerr.New("download.dir must not be empty")
	case f.Capture.ManifestMarker == "":
		return goerr.New("capture.manifest_marker must not be empty")
	case f.Transcribe.OutputDir == "":
		return goerr.New("transcribe.output_dir must not be empty")
	case f.Transcribe.StableSeconds < 0:
		return goerr.New("transcribe.stable_seconds must not be negative", goerr.V("value", f.Transcribe.StableSeconds))
	}
	return nil
}

// Encode renders the configuration as TOML
func (f File) Encode() ([]byte, error) {
	data, err := toml.Marshal(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode config")
	}
	return data, nil
}

// Markers returns the source matching markers
func (f File) Markers() capture.Markers {
	return capture.Markers{
		Manifest: f.Capture.ManifestMarker,
		Provider: f.Capture.ProviderMarker,
		Direct:   f.Capture.DirectMarker,
	}
}

// StableInterval returns the watch-mode stability interval
func (f File) StableInterval() time.Duration {
	return time.Duration(f.Transcribe.StableSeconds) * time.Second
}

// RequestHeaders returns the default fetcher headers. The cookie comes from
// the configured Netscape cookies file, if any.
func (f File) RequestHeaders() (model.RequestHeaders, error) {
	h := model.RequestHeaders{
		Referer:   f.Portal.URL,
		Origin:    f.Portal.Origin,
		UserAgent: f.Portal.UserAgent,
	}
	if f.Portal.CookiesFile == "" {
		return h, nil
	}

	cookies, err := platform.LoadCookieFile(f.Portal.CookiesFile)
	if err != nil {
		return h, goerr.Wrap(err, "failed to load cookies", goerr.V("path", f.Portal.CookiesFile))
	}
	h.Cookie = platform.CookieHeader(cookies, time.Now())
	return h, nil
}
