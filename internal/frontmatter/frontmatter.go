// Package frontmatter encodes and decodes markdown documents with a
// YAML header block delimited by "---" lines.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conorfennell/learnbase/internal/domain"
)

const delimiter = "---"

// Encode renders the header struct as YAML between "---" delimiters and
// appends the body. Field order follows the struct definition and map
// keys are sorted, so encoding the same values always yields identical
// bytes.
func Encode(header any, body string) ([]byte, error) {
	meta, err := yaml.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encoding header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteByte('\n')
	buf.Write(meta)
	buf.WriteString(delimiter)
	buf.WriteString("\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Decode splits the document into header and body and unmarshals the
// header YAML into the given struct. The body is returned with the
// single blank separator line stripped.
func Decode(data []byte, header any) (string, error) {
	front, body, err := split(string(data))
	if err != nil {
		return "", err
	}
	if err := yaml.Unmarshal([]byte(front), header); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedHeader, err)
	}
	return body, nil
}

// split separates the YAML header from the body. The document must
// begin with "---\n" and contain a closing "---" line.
func split(content string) (front, body string, err error) {
	if !strings.HasPrefix(content, delimiter+"\n") {
		return "", "", fmt.Errorf("%w: missing opening delimiter", domain.ErrMalformedHeader)
	}

	rest := content[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter)
	if end == -1 {
		return "", "", fmt.Errorf("%w: missing closing delimiter", domain.ErrMalformedHeader)
	}

	front = rest[:end+1]
	body = rest[end+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	return front, body, nil
}
