package pronunciation

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/kidspeak/internal/llm"
)

// DefaultMaxAudioBytes bounds a decoded recording.
const DefaultMaxAudioBytes = 10 << 20

// Browsers and http.DetectContentType report some audio containers under
// names the model endpoints do not accept.
var mimeAliases = map[string]string{
	"video/webm":               "audio/webm",
	"application/ogg":          "audio/ogg",
	"audio/wave":               "audio/wav",
	"audio/x-wav":              "audio/wav",
	"audio/mp3":                "audio/mpeg",
	"application/octet-stream": "audio/webm",
}

// decodeAudio decodes base64 audio, optionally wrapped in a data: URL, and
// works out its MIME type from the URL prefix or the bytes themselves.
func decodeAudio(s string, maxBytes int) (llm.Blob, error) {
	data, hint, err := decodeBase64MaybeDataURL(s)
	if err != nil {
		return llm.Blob{}, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	if len(data) == 0 {
		return llm.Blob{}, ErrMissingInput
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return llm.Blob{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidAudio, len(data), maxBytes)
	}
	return llm.Blob{MIMEType: pickMIME(hint, data), Data: data}, nil
}

func decodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var hint string
	if strings.HasPrefix(s, "data:") {
		// data:<mime>[;codecs=...];base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hint = meta[:semi]
			} else {
				hint = meta
			}
			s = s[idx+1:]
		}
	}

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, hint, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}

func pickMIME(hint string, data []byte) string {
	mime := strings.ToLower(strings.TrimSpace(hint))
	if mime == "" {
		mime = http.DetectContentType(data)
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
	}
	if alias, ok := mimeAliases[mime]; ok {
		return alias
	}
	return mime
}
