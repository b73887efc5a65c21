package proposal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// delimiter bounds the front-matter block, one marker line above and one below.
const delimiter = "---"

// MalformedHeaderError reports a front-matter block that could not be parsed
// at all. It short-circuits the remaining checks for that document only.
type MalformedHeaderError struct {
	Path   string
	Reason string
	Line   int
}

// Error implements the error interface.
func (e *MalformedHeaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: malformed front matter: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: malformed front matter: %s", e.Path, e.Reason)
}

// Parse extracts the front-matter block and body from raw document content.
// It is a pure function: no side effects, identical output for identical input.
func Parse(path string, content []byte) (*Proposal, error) {
	str := string(content)

	if !strings.HasPrefix(str, delimiter+"\n") && !strings.HasPrefix(str, delimiter+"\r\n") {
		return nil, &MalformedHeaderError{Path: path, Reason: "missing opening delimiter", Line: 1}
	}

	// Skip the opening delimiter line.
	start := len(delimiter)
	if str[start] == '\r' {
		start++
	}
	start++ // the newline

	closeIdx := strings.Index(str[start:], "\n"+delimiter)
	if closeIdx == -1 {
		return nil, &MalformedHeaderError{Path: path, Reason: "missing closing delimiter"}
	}

	block := str[start : start+closeIdx]

	bodyStart := start + closeIdx + 1 + len(delimiter)
	for bodyStart < len(str) && (str[bodyStart] == '\n' || str[bodyStart] == '\r') {
		bodyStart++
	}
	body := ""
	if bodyStart < len(str) {
		body = str[bodyStart:]
	}

	matter, err := parseBlock(path, block)
	if err != nil {
		return nil, err
	}

	return &Proposal{
		Path:     path,
		Matter:   matter,
		Body:     body,
		BodyLine: strings.Count(str[:bodyStart], "\n") + 1,
		Hash:     ContentHash(content),
	}, nil
}

// parseBlock decodes the header block as an ordered key-value mapping.
// Field lines are offset by one because the opening delimiter is line 1.
func parseBlock(path, block string) (*FrontMatter, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block), &node); err != nil {
		return nil, &MalformedHeaderError{Path: path, Reason: err.Error()}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &MalformedHeaderError{Path: path, Reason: "empty header block"}
	}

	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &MalformedHeaderError{
			Path:   path,
			Reason: "header is not a key: value mapping",
			Line:   root.Line + 1,
		}
	}

	matter := &FrontMatter{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, &MalformedHeaderError{
				Path:   path,
				Reason: "field name is not a scalar",
				Line:   keyNode.Line + 1,
			}
		}

		value, err := decodeValue(valNode)
		if err != nil {
			return nil, &MalformedHeaderError{
				Path:   path,
				Reason: fmt.Sprintf("field %q: %v", keyNode.Value, err),
				Line:   valNode.Line + 1,
			}
		}

		matter.Fields = append(matter.Fields, Field{
			Name:  keyNode.Value,
			Value: value,
			Line:  keyNode.Line + 1,
		})
	}

	return matter, nil
}

// decodeValue maps a YAML node onto the tagged-variant Value type.
func decodeValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		return decodeSequence(n)
	default:
		return Value{}, fmt.Errorf("unsupported value structure")
	}
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!int":
		i, err := strconv.Atoi(n.Value)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer %q", n.Value)
		}
		return Value{Kind: ValueInt, Int: i}, nil
	case "!!timestamp":
		t, err := parseDate(n.Value)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueDate, Date: t}, nil
	default:
		// Quoted dates arrive as plain strings; promote when they parse.
		if t, err := parseDate(n.Value); err == nil {
			return Value{Kind: ValueDate, Date: t}, nil
		}
		return Value{Kind: ValueString, Str: n.Value}, nil
	}
}

func decodeSequence(n *yaml.Node) (Value, error) {
	allInts := true
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return Value{}, fmt.Errorf("nested list values are not supported")
		}
		if item.Tag != "!!int" {
			allInts = false
		}
	}

	if allInts {
		list := make([]int, 0, len(n.Content))
		for _, item := range n.Content {
			i, err := strconv.Atoi(item.Value)
			if err != nil {
				return Value{}, fmt.Errorf("invalid integer %q", item.Value)
			}
			list = append(list, i)
		}
		return Value{Kind: ValueIntList, List: list}, nil
	}

	strs := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		strs = append(strs, item.Value)
	}
	return Value{Kind: ValueStringList, Strs: strs}, nil
}

// parseDate accepts the YYYY-MM-DD form used throughout proposal headers.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ContentHash computes a SHA256 hash of the content. The watcher uses it to
// suppress change events that do not alter file contents.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
