package loader

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MIME substrings used to split a HAR capture into pages and scripts.
const (
	MimeHTML       = "html"
	MimeJavaScript = "javascript"
)

var ErrUnsupportedFormat = errors.New("unsupported file format, expected .har")

// HAR is the subset of the HTTP Archive format the tool reads.
type HAR struct {
	Log HARLog `json:"log"`
}

type HARLog struct {
	Entries []HAREntry `json:"entries"`
}

type HAREntry struct {
	Request  HARRequest  `json:"request"`
	Response HARResponse `json:"response"`
}

type HARRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type HARResponse struct {
	Status  int        `json:"status"`
	Content HARContent `json:"content"`
}

type HARContent struct {
	MimeType string  `json:"mimeType"`
	Text     *string `json:"text,omitempty"`
	Encoding string  `json:"encoding,omitempty"`
}

func ReadHAR(r io.Reader) (*HAR, error) {
	var har HAR
	if err := json.NewDecoder(r).Decode(&har); err != nil {
		return nil, fmt.Errorf("decode har: %w", err)
	}
	return &har, nil
}

// ReadHARFile opens path on fs; only the .har extension is accepted.
func ReadHARFile(fs afero.Fs, path string) (*HAR, error) {
	if ext := filepath.Ext(path); ext != ".har" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHAR(f)
}

// TextEntries returns the entries whose response MIME type contains
// mimeSubstring. Entries without a body are dropped; base64 bodies are
// decoded. When a URL repeats, the last capture wins.
func (h *HAR) TextEntries(mimeSubstring string) Table {
	table := make(Table)
	if h == nil {
		return table
	}
	for _, entry := range h.Log.Entries {
		content := entry.Response.Content
		if !strings.Contains(content.MimeType, mimeSubstring) || content.Text == nil {
			continue
		}
		text := *content.Text
		if content.Encoding == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				continue
			}
			text = string(decoded)
		}
		table[entry.Request.URL] = text
	}
	return table
}
