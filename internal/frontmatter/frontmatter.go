package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates an opening frontmatter fence with no
// matching close.
var ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")

var delim = []byte("---\n")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a frontmatter fence, had is false and
// body is the full input. Windows newlines are normalized before splitting.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, nil
	}

	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		// Empty frontmatter block.
		return []byte{}, rest[len(delim):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A fence on the final line without a trailing newline still closes.
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("---")], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw frontmatter (without fences) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(frontmatter) == 0 {
		return out, nil
	}
	if err := yaml.Unmarshal(frontmatter, &out); err != nil {
		return nil, err
	}
	return out, nil
}
