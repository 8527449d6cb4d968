package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ytget/lecturegrab/internal/model"
)

// DevTools network event methods that carry stream URLs
const (
	MethodRequestWillBeSent = "Network.requestWillBeSent"
	MethodResponseReceived  = "Network.responseReceived"
)

// maxEnvelopeDepth bounds how many nested "message" wrappers are unpacked
const maxEnvelopeDepth = 3

type devtoolsEvent struct {
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Message json.RawMessage `json:"message"`
}

type networkParams struct {
	Request  *exchange `json:"request"`
	Response *exchange `json:"response"`
}

type exchange struct {
	URL     string         `json:"url"`
	Headers map[string]any `json:"headers"`
}

// ParsePerformanceLog decodes a browser performance log into network records.
// The input is either JSON lines or a single JSON array; each entry may be a
// selenium envelope ({"message": "<json>"}), a DevTools message wrapper, or a
// bare event. Malformed and irrelevant entries are skipped; only a read
// failure is returned as an error.
func ParsePerformanceLog(r io.Reader, logger *slog.Logger) ([]model.NetworkRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.NetworkRecord{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read performance log")
	}

	var entries [][]byte
	if first == '[' {
		var raw []json.RawMessage
		if err := json.NewDecoder(br).Decode(&raw); err != nil {
			logger.Debug("performance log is not a valid JSON array", slog.Any("error", err))
			return []model.NetworkRecord{}, nil
		}
		for _, e := range raw {
			entries = append(entries, e)
		}
	} else {
		for {
			line, err := br.ReadBytes('\n')
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				entries = append(entries, trimmed)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, goerr.Wrap(err, "failed to read performance log", goerr.V("entries", len(entries)))
			}
		}
	}

	records := make([]model.NetworkRecord, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		rec, ok := decodeEntry(entry, 0)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	logger.Debug("decoded performance log",
		slog.Int("entries", len(entries)),
		slog.Int("records", len(records)),
		slog.Int("skipped", skipped),
	)
	return records, nil
}

func decodeEntry(data []byte, depth int) (model.NetworkRecord, bool) {
	if depth > maxEnvelopeDepth {
		return model.NetworkRecord{}, false
	}

	var ev devtoolsEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return model.NetworkRecord{}, false
	}

	if ev.Method == "" {
		inner := bytes.TrimSpace(ev.Message)
		if len(inner) == 0 {
			return model.NetworkRecord{}, false
		}
		if inner[0] == '"' {
			var s string
			if err := json.Unmarshal(inner, &s); err != nil {
				return model.NetworkRecord{}, false
			}
			inner = []byte(s)
		}
		return decodeEntry(inner, depth+1)
	}

	if ev.Method != MethodRequestWillBeSent && ev.Method != MethodResponseReceived {
		return model.NetworkRecord{}, false
	}

	var params networkParams
	if err := json.Unmarshal(ev.Params, &params); err != nil {
		return model.NetworkRecord{}, false
	}

	switch {
	case params.Response != nil && params.Response.URL != "":
		return model.NetworkRecord{
			URL:       params.Response.URL,
			Headers:   flattenHeaders(params.Response.Headers),
			Direction: model.DirectionResponse,
		}, true
	case params.Request != nil && params.Request.URL != "":
		return model.NetworkRecord{
			URL:       params.Request.URL,
			Headers:   flattenHeaders(params.Request.Headers),
			Direction: model.DirectionRequest,
		}, true
	}
	return model.NetworkRecord{}, false
}

func flattenHeaders(h map[string]any) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
