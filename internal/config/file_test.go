package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	gt.NoError(t, err)
	gt.Equal(t, cfg, DefaultFile())
	gt.Equal(t, cfg.Portal.URL, DefaultPortalURL)
	gt.Equal(t, cfg.Capture.ManifestMarker, ".m3u8")
	gt.Equal(t, cfg.Capture.ProviderMarker, "kaltura")
	gt.Equal(t, cfg.Capture.DirectMarker, "serveflavor")
	gt.Equal(t, cfg.StableInterval(), 2*time.Second)
}

func TestLoadFile_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lecturegrab.toml")
	data := `
[download]
dir = "/srv/lectures"
extra_args = ["--retries", "3"]

[transcribe]
language = "en"
device = "cpu"
`
	gt.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFile(path)
	gt.NoError(t, err)
	gt.Equal(t, cfg.Download.Dir, "/srv/lectures")
	gt.Equal(t, cfg.Download.ExtraArgs, []string{"--retries", "3"})
	gt.Equal(t, cfg.Transcribe.Language, "en")
	gt.Equal(t, cfg.Transcribe.Device, "cpu")

	// untouched sections keep their defaults
	gt.Equal(t, cfg.Download.Fetcher, DefaultFetcher)
	gt.Equal(t, cfg.Transcribe.Model, DefaultWhisperModel)
	gt.Equal(t, cfg.Portal.Origin, DefaultOrigin)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	gt.Error(t, err)

	broken := filepath.Join(dir, "broken.toml")
	gt.NoError(t, os.WriteFile(broken, []byte("[download\ndir ="), 0o644))
	_, err = LoadFile(broken)
	gt.Error(t, err)

	empty := filepath.Join(dir, "empty-dir.toml")
	gt.NoError(t, os.WriteFile(empty, []byte("[download]\ndir = \"\"\n"), 0o644))
	_, err = LoadFile(empty)
	gt.Error(t, err)
}

func TestFile_EncodeRoundTrip(t *testing.T) {
	cfg := DefaultFile()
	cfg.Download.Dir = "elsewhere"

	data, err := cfg.Encode()
	gt.NoError(t, err)

	decoded := DefaultFile()
	gt.NoError(t, ParseFile(data, &decoded))
	gt.Equal(t, decoded.Download.Dir, "elsewhere")
}

func TestFile_Markers(t *testing.T) {
	cfg := DefaultFile()
	cfg.Capture.ProviderMarker = "panopto"

	m := cfg.Markers()
	gt.Equal(t, m.Manifest, ".m3u8")
	gt.Equal(t, m.Provider, "panopto")
}

func TestFile_RequestHeaders(t *testing.T) {
	cfg := DefaultFile()

	h, err := cfg.RequestHeaders()
	gt.NoError(t, err)
	gt.Equal(t, h.Referer, DefaultPortalURL)
	gt.Equal(t, h.Origin, DefaultOrigin)
	gt.Equal(t, h.Cookie, "")

	path := filepath.Join(t.TempDir(), "cookies.txt")
	cookies := "# Netscape HTTP Cookie File\n" +
		".kuleuven.be\tTRUE\t/\tTRUE\t0\tsession\tabc\n" +
		".kuleuven.be\tTRUE\t/\tTRUE\t0\tlang\tnl\n"
	gt.NoError(t, os.WriteFile(path, []byte(cookies), 0o644))

	cfg.Portal.CookiesFile = path
	h, err = cfg.RequestHeaders()
	gt.NoError(t, err)
	gt.Equal(t, h.Cookie, "session=abc; lang=nl")

	cfg.Portal.CookiesFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = cfg.RequestHeaders()
	gt.Error(t, err)
}
