package vault

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

const delimiter = "---"

// Frontmatter is the ordered YAML mapping at the head of a note.
// Keys keep their order across Parse and Render; new keys are appended.
type Frontmatter struct {
	m *yaml.Node
}

// Note is a parsed markdown note.
type Note struct {
	Front *Frontmatter
	Body  string
}

// ParseNote splits content into front matter and body. Content without a
// leading "---" line, or without a closing one, is all body.
func ParseNote(content string) (*Note, error) {
	front, body, ok := split(content)
	if !ok {
		return &Note{Front: NewFrontmatter(), Body: content}, nil
	}
	fm, err := parseFrontmatter(front)
	if err != nil {
		return nil, err
	}
	return &Note{Front: fm, Body: body}, nil
}

// Render renders the note back to text.
func (n *Note) Render() (string, error) { return n.Front.Render(n.Body) }

func split(content string) (front, body string, ok bool) {
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimRight(first, "\r") != delimiter {
		return "", content, false
	}
	var fm strings.Builder
	for rest != "" {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == delimiter {
			return fm.String(), next, true
		}
		fm.WriteString(line)
		fm.WriteByte('\n')
		if !more {
			break
		}
		rest = next
	}
	return "", content, false
}

// NewFrontmatter returns an empty mapping.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{m: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func parseFrontmatter(src string) (*Frontmatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewFrontmatter(), nil
	}
	root := doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
		return &Frontmatter{m: root}, nil
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return NewFrontmatter(), nil
	}
	return nil, errors.New("parse front matter: not a mapping")
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int { return len(f.m.Content) / 2 }

// Keys returns the keys in document order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, f.Len())
	for i := 0; i+1 < len(f.m.Content); i += 2 {
		keys = append(keys, f.m.Content[i].Value)
	}
	return keys
}

func (f *Frontmatter) index(key string) int {
	for i := 0; i+1 < len(f.m.Content); i += 2 {
		if f.m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present.
func (f *Frontmatter) Has(key string) bool { return f.index(key) >= 0 }

// Get decodes the value of key.
func (f *Frontmatter) Get(key string) (any, bool) {
	i := f.index(key)
	if i < 0 {
		return nil, false
	}
	var v any
	if err := f.m.Content[i+1].Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Set replaces the value of key in place, or appends the key.
func (f *Frontmatter) Set(key string, value any) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if i := f.index(key); i >= 0 {
		f.m.Content[i+1] = &n
		return nil
	}
	f.m.Content = append(f.m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&n,
	)
	return nil
}

// Delete removes key if present.
func (f *Frontmatter) Delete(key string) {
	if i := f.index(key); i >= 0 {
		f.m.Content = append(f.m.Content[:i], f.m.Content[i+2:]...)
	}
}

// AppendUnique adds value to the list at key unless it is already there.
// A missing key becomes a one-element list; a scalar becomes a list holding
// the old and the new value. It reports whether the value was added.
func (f *Frontmatter) AppendUnique(key, value string) (bool, error) {
	i := f.index(key)
	if i < 0 {
		return true, f.Set(key, []string{value})
	}
	item := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	v := f.m.Content[i+1]
	switch v.Kind {
	case yaml.SequenceNode:
		for _, c := range v.Content {
			if c.Kind == yaml.ScalarNode && c.Value == value {
				return false, nil
			}
		}
		v.Content = append(v.Content, item)
		return true, nil
	case yaml.ScalarNode:
		if v.Tag == "!!null" || v.Value == "" {
			return true, f.Set(key, []string{value})
		}
		if v.Value == value {
			return false, nil
		}
		f.m.Content[i+1] = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{v, item}}
		return true, nil
	}
	return false, fmt.Errorf("front matter %s: cannot append to a mapping", key)
}

// Render writes the front matter followed by body. An empty mapping renders
// as body alone.
func (f *Frontmatter) Render(body string) (string, error) {
	if f.Len() == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.m); err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}

	var out strings.Builder
	out.WriteString(delimiter + "\n")
	out.Write(buf.Bytes())
	out.WriteString(delimiter + "\n")
	out.WriteString(body)
	return out.String(), nil
}
