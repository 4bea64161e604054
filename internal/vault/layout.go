package vault

import (
	"path"
	"regexp"
	"strings"

	"casync/internal/ca"
)

// Layout computes vault-relative folders for one architecture.
// Folders use "/" separators and carry no leading or trailing divider.
type Layout struct {
	BaseFolder     string
	DiagramsFolder string
	AddIdentifier  bool
	ArchName       string
	ArchID         string
}

// ArchitectureFolder is <base>[/<arch name>][ - <arch id>].
func (l Layout) ArchitectureFolder() string {
	folder := l.BaseFolder
	if l.ArchName != "" {
		folder += "/" + l.ArchName
	}
	if l.AddIdentifier && l.ArchID != "" {
		folder += " - " + l.ArchID
	}
	return strings.Trim(folder, "/")
}

// DiagramFolder is the architecture folder plus the diagrams subfolder, if set.
func (l Layout) DiagramFolder() string {
	if l.DiagramsFolder == "" {
		return l.ArchitectureFolder()
	}
	return join(l.ArchitectureFolder(), l.DiagramsFolder)
}

// ElementFolder is the architecture folder plus the element's model type.
// RACI, Sizing and Notes instances all land in the Notes folder because the
// service reports them with the same model type.
func (l Layout) ElementFolder(el ca.Element) string {
	if mt := el.ModelType(); mt != "" {
		return join(l.ArchitectureFolder(), mt)
	}
	return l.ArchitectureFolder()
}

// NotePath is ElementFolder(el)/Filename(el).md.
func (l Layout) NotePath(el ca.Element) string {
	return join(l.ElementFolder(el), Filename(el)+".md")
}

// LogPath is the architecture's Log.md.
func (l Layout) LogPath() string {
	return join(l.ArchitectureFolder(), logName)
}

func join(elem ...string) string {
	return strings.TrimPrefix(path.Join(elem...), "/")
}

var (
	htmlEntity   = regexp.MustCompile(`&[^;]+;`)
	htmlTag      = regexp.MustCompile(`</?[^>]+(>|$)`)
	unsafeChars  = regexp.MustCompile(`[^a-zA-Z0-9 ()_.\-]`)
	requirements = map[string]string{
		"FunctionalRequirement":    "fr_id",
		"NonFunctionalRequirement": "nfr_id",
	}
)

// Filename returns the note or diagram base name for an element, without
// folder or extension. Labelled elements get the part of _id after its last
// "_" appended so that equal labels do not collide.
func Filename(el ca.Element) string {
	var name string
	if key, ok := requirements[el.ModelType()]; ok {
		if prefix := strings.TrimSpace(sanitize(el.String(key))); prefix != "" {
			name = prefix + " "
		}
	}

	if label := el.Label(); label != "" {
		name += sanitize(label)
		if suffix := idSuffix(el.ID()); suffix != "" {
			name += "_" + suffix
		}
	} else {
		name += el.ModelType()
	}
	// A leading period would hide the file.
	name = strings.TrimLeft(name, ".")

	if strings.TrimSpace(name) == "" {
		name = strings.TrimPrefix(unsafeChars.ReplaceAllString(el.ID(), ""), ".")
	}
	if name == "" {
		name = "element"
	}
	return name
}

func sanitize(s string) string {
	s = htmlEntity.ReplaceAllString(s, "")
	s = htmlTag.ReplaceAllString(s, "")
	return unsafeChars.ReplaceAllString(s, "")
}

func idSuffix(id string) string {
	if i := strings.LastIndex(id, "_"); i >= 0 {
		return id[i+1:]
	}
	return id
}
