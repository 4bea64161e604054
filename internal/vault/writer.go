package vault

import (
	"fmt"
	"log/slog"
	"sort"

	"casync/internal/ca"
	"casync/internal/logging"
)

const (
	genericGroup    = "GenericGroup"
	keyNoteID       = "id"
	keyArchitecture = "architectureId"
	keyOwnedBy      = "ownedByInstanceId"
)

const elementsSection = "\n# Elements in this artifact\n" +
	"Functional requirements associated with this artifact\n\n" +
	"```dataview\n" +
	"TABLE without ID link(file.link, label) as Name, modelType as Model, type as Type, description as Description\n" +
	"WHERE contains(architectureId,this.architectureId)\n" +
	"WHERE contains(ownedByInstanceId, this.id)\n" +
	"SORT modelType ASC\n\n" +
	"```\n\n\n"

// Instance is the fetched content of one artifact instance. The first
// element describes the instance itself.
type Instance struct {
	Elements    []ca.Element
	DiagramFile string // file name of the saved diagram, if any
}

// SaveResult counts what SaveInstances did. Errors holds one
// "<error> <path>" line per failed note.
type SaveResult struct {
	Created   int
	Updated   int
	Unchanged int
	Errors    []string
}

// Writer saves instances of one architecture into a vault.
type Writer struct {
	vault  *Vault
	layout Layout
	logger *slog.Logger
}

// NewWriter returns a Writer placing notes according to layout.
func NewWriter(v *Vault, layout Layout) *Writer {
	return &Writer{vault: v, layout: layout, logger: logging.New("vault")}
}

// SaveInstances writes one note per element, one instance after another.
// Existing notes only gain ownership links; their content is kept.
// A failing note is recorded in the result and does not stop the run.
func (w *Writer) SaveInstances(instances []Instance) SaveResult {
	var res SaveResult
	templates, err := w.vault.Templates()
	if err != nil {
		w.logger.Warn("template scan failed, using built-in note body", "error", err)
		templates = Templates{}
	}

	for _, inst := range instances {
		elements := make([]ca.Element, 0, len(inst.Elements))
		for _, el := range inst.Elements {
			if el.ModelType() != genericGroup {
				elements = append(elements, el)
			}
		}
		if len(elements) == 0 {
			continue
		}
		rootID := elements[0].ID()

		for i, el := range elements {
			notePath := w.layout.NotePath(el)
			linked := el.Owned() && i != 0

			if w.vault.Exists(notePath) {
				if !linked {
					res.Unchanged++
					continue
				}
				added := false
				err := w.vault.UpdateFrontmatter(notePath, func(fm *Frontmatter) error {
					var err error
					added, err = fm.AppendUnique(keyOwnedBy, rootID)
					return err
				})
				switch {
				case err != nil:
					res.Errors = append(res.Errors, fmt.Sprintf("%v %s", err, notePath))
				case added:
					res.Updated++
				default:
					res.Unchanged++
				}
				continue
			}

			body := ""
			if i == 0 {
				body = rootBody(templates, el, inst.DiagramFile)
			}
			if err := w.create(notePath, body, el, rootID, linked); err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("%v %s", err, notePath))
				continue
			}
			res.Created++
		}
	}
	w.logger.Debug("instances saved",
		"created", res.Created, "updated", res.Updated, "unchanged", res.Unchanged, "errors", len(res.Errors))
	return res
}

func rootBody(templates Templates, el ca.Element, diagramFile string) string {
	if tpl, ok := templates.Lookup(el.ModelType()); ok && tpl.Content != "" {
		return tpl.Content
	}
	body := ""
	if diagramFile != "" {
		body = "# Diagram\n![[" + diagramFile + "]]\n"
	}
	return body + elementsSection
}

func (w *Writer) create(notePath, body string, el ca.Element, rootID string, linked bool) error {
	note, err := ParseNote(body)
	if err != nil {
		return err
	}
	fm := note.Front
	fm.Delete(TemplateKey)
	if err := setElement(fm, el); err != nil {
		return err
	}
	if err := fm.Set(keyArchitecture, w.layout.ArchID); err != nil {
		return err
	}
	if linked {
		if err := fm.Set(keyOwnedBy, []string{rootID}); err != nil {
			return err
		}
	} else {
		fm.Delete(ca.KeyOwned)
	}
	out, err := note.Render()
	if err != nil {
		return err
	}
	return w.vault.WriteFile(notePath, []byte(out))
}

// setElement copies every element field into fm. _id is written as id and
// comes first; the other fields follow in key order.
func setElement(fm *Frontmatter, el ca.Element) error {
	if err := fm.Set(keyNoteID, el[ca.KeyID]); err != nil {
		return err
	}
	keys := make([]string, 0, len(el))
	for k := range el {
		if k != ca.KeyID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fm.Set(k, el[k]); err != nil {
			return err
		}
	}
	return nil
}
