// Package vault writes architecture elements as markdown notes with YAML
// front matter, plus diagrams and a sync log, under a directory tree.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"casync/internal/ca"
	"casync/internal/logging"
)

const (
	logName = "Log.md"

	// TemplateKey marks a note as a template for a model type.
	TemplateKey = "caTemplateModel"
	// TemplateDefault is the TemplateKey value of the fallback template.
	TemplateDefault = "default"
)

// Vault is a directory of notes. All paths passed to its methods are
// relative to the root and use "/" separators.
type Vault struct {
	root   string
	logger *slog.Logger
}

// New returns a Vault rooted at root.
func New(root string) *Vault {
	return &Vault{root: root, logger: logging.New("vault")}
}

// Root returns the vault directory.
func (v *Vault) Root() string { return v.root }

func (v *Vault) abs(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the vault", rel)
	}
	return filepath.Join(v.root, local), nil
}

// Exists reports whether a file exists at rel.
func (v *Vault) Exists(rel string) bool {
	p, err := v.abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Read returns the content of the file at rel.
func (v *Vault) Read(rel string) (string, error) {
	p, err := v.abs(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile writes data to rel, creating parent folders.
func (v *Vault) WriteFile(rel string, data []byte) error {
	p, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Delete removes the file at rel. A missing file is not an error.
func (v *Vault) Delete(rel string) error {
	p, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// UpdateFrontmatter reads the note at rel, applies fn to its front matter
// and writes it back. The body is left untouched.
func (v *Vault) UpdateFrontmatter(rel string, fn func(*Frontmatter) error) error {
	content, err := v.Read(rel)
	if err != nil {
		return err
	}
	note, err := ParseNote(content)
	if err != nil {
		return err
	}
	if err := fn(note.Front); err != nil {
		return err
	}
	out, err := note.Render()
	if err != nil {
		return err
	}
	return v.WriteFile(rel, []byte(out))
}

// Template is a note whose front matter carries TemplateKey.
type Template struct {
	Path    string
	Model   string
	Content string
}

// Templates indexes templates by model type, first in walk order.
type Templates map[string]Template

// Lookup returns the template for modelType, or the default template.
func (t Templates) Lookup(modelType string) (Template, bool) {
	if tpl, ok := t[modelType]; ok && modelType != "" {
		return tpl, true
	}
	tpl, ok := t[TemplateDefault]
	return tpl, ok
}

// Templates scans the vault's markdown files for templates. Folders whose
// name starts with "." are skipped, as are notes that fail to parse.
func (v *Vault) Templates() (Templates, error) {
	found := Templates{}
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		note, err := ParseNote(string(data))
		if err != nil {
			v.logger.Debug("skip unparsable note", "path", p, "error", err)
			return nil
		}
		raw, ok := note.Front.Get(TemplateKey)
		if !ok {
			return nil
		}
		model, ok := raw.(string)
		if !ok || model == "" {
			return nil
		}
		if _, seen := found[model]; seen {
			return nil
		}
		rel, _ := filepath.Rel(v.root, p)
		found[model] = Template{Path: filepath.ToSlash(rel), Model: model, Content: string(data)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan templates: %w", err)
	}
	return found, nil
}

// FindTemplate returns the template for modelType. An exact match wins over
// the default template.
func (v *Vault) FindTemplate(modelType string) (Template, bool, error) {
	all, err := v.Templates()
	if err != nil {
		return Template{}, false, err
	}
	tpl, ok := all.Lookup(modelType)
	return tpl, ok, nil
}

// WriteDiagram replaces <folder>/<name>.<format> with data and returns the
// file name with its extension.
func (v *Vault) WriteDiagram(folder, name string, format ca.DiagramFormat, data []byte) (string, error) {
	file := name + "." + string(format)
	rel := join(folder, file)
	if err := v.Delete(rel); err != nil {
		return "", fmt.Errorf("replace diagram: %w", err)
	}
	if err := v.WriteFile(rel, data); err != nil {
		return "", fmt.Errorf("write diagram: %w", err)
	}
	v.logger.Debug("diagram written", "path", rel, "bytes", len(data))
	return file, nil
}

// SaveLog prepends a dated section listing errs to <folder>/Log.md.
// Nothing is written when errs is empty.
func (v *Vault) SaveLog(folder, title string, errs []string, now time.Time) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n# %s %s\n", now.Format("2006-01-02 15:04"), title)
	b.WriteString("```\n")
	for _, e := range errs {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteString("```\n")

	rel := join(folder, logName)
	existing, err := v.Read(rel)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read log: %w", err)
	}
	if err := v.WriteFile(rel, []byte(b.String()+existing)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
