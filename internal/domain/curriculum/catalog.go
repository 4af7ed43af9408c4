package curriculum

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/yanqian/learnmate/pkg/errors"
)

// Catalog is the immutable curriculum knowledge base consulted by the roadmap engine.
// It is safe for concurrent reads.
type Catalog struct {
	version  string
	subjects []string
	entries  map[string]Entry
	careers  []Career
}

type catalogDocument struct {
	Version  string            `yaml:"version"`
	Careers  []Career          `yaml:"careers"`
	Subjects []subjectDocument `yaml:"subjects"`
}

type subjectDocument struct {
	Name          string                `yaml:"name"`
	Prerequisites []string              `yaml:"prerequisites"`
	Levels        map[string][]Template `yaml:"levels"`
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCatalog, "decode catalog", err)
	}
	return build(doc)
}

func build(doc catalogDocument) (*Catalog, error) {
	version := strings.TrimSpace(doc.Version)
	if version == "" {
		return nil, catalogErr("version", "catalog version is required")
	}
	c := &Catalog{
		version: version,
		entries: make(map[string]Entry, len(doc.Subjects)),
	}

	for i, sd := range doc.Subjects {
		name := strings.TrimSpace(sd.Name)
		if name == "" {
			return nil, catalogErr(fmt.Sprintf("subjects[%d].name", i), "subject name is required")
		}
		if _, dup := c.entries[name]; dup {
			return nil, catalogErr("subjects."+name, "duplicate subject")
		}
		entry := Entry{
			Subject:       name,
			Prerequisites: trimAll(sd.Prerequisites),
			Levels:        make(map[Level][]Template, len(sd.Levels)),
		}
		for rawLevel, templates := range sd.Levels {
			level := Level(strings.ToLower(strings.TrimSpace(rawLevel)))
			if !level.Valid() {
				return nil, catalogErr("subjects."+name+".levels", fmt.Sprintf("unknown level %q", rawLevel))
			}
			for j, tpl := range templates {
				field := fmt.Sprintf("subjects.%s.levels.%s[%d]", name, level, j)
				if strings.TrimSpace(tpl.Title) == "" {
					return nil, catalogErr(field, "template title is required")
				}
				if len(tpl.Tasks) == 0 {
					return nil, catalogErr(field, "template needs at least one task")
				}
				if _, ok := DurationHours(tpl.DurationLabel); !ok {
					return nil, catalogErr(field, fmt.Sprintf("unsupported duration %q", tpl.DurationLabel))
				}
			}
			entry.Levels[level] = templates
		}
		c.entries[name] = entry
		c.subjects = append(c.subjects, name)
	}

	for i, career := range doc.Careers {
		name := strings.TrimSpace(career.Name)
		if name == "" {
			return nil, catalogErr(fmt.Sprintf("careers[%d].name", i), "career name is required")
		}
		c.careers = append(c.careers, Career{Name: name, Subjects: trimAll(career.Subjects)})
	}
	return c, nil
}

func catalogErr(field, message string) error {
	return apperrors.WrapField(apperrors.CodeCatalog, field, message, nil)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Version identifies the catalog content; it participates in cache keys.
func (c *Catalog) Version() string {
	return c.version
}

// Subjects returns subject names in declaration order.
func (c *Catalog) Subjects() []string {
	return append([]string(nil), c.subjects...)
}

// Lookup finds a subject by exact name.
func (c *Catalog) Lookup(subject string) (Entry, bool) {
	entry, ok := c.entries[subject]
	return entry, ok
}

// Prerequisites lists the prerequisite names of a subject, or nil when unknown.
func (c *Catalog) Prerequisites(subject string) []string {
	entry, ok := c.entries[subject]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.Prerequisites...)
}

// Templates returns a deep copy of the templates for subject at level. The second
// result is false when either the subject or the level is absent.
func (c *Catalog) Templates(subject string, level Level) ([]Template, bool) {
	entry, ok := c.entries[subject]
	if !ok {
		return nil, false
	}
	templates, ok := entry.Levels[level]
	if !ok {
		return nil, false
	}
	out := make([]Template, len(templates))
	for i, tpl := range templates {
		out[i] = Template{
			Title:         tpl.Title,
			Tasks:         append([]string(nil), tpl.Tasks...),
			DurationLabel: tpl.DurationLabel,
			Resources:     append([]string(nil), tpl.Resources...),
		}
	}
	return out, true
}

// Careers returns the career table in declaration order.
func (c *Catalog) Careers() []Career {
	out := make([]Career, len(c.careers))
	for i, career := range c.careers {
		out[i] = Career{Name: career.Name, Subjects: append([]string(nil), career.Subjects...)}
	}
	return out
}

// ResolveCareer picks the first career, in declaration order, whose name is a
// case-insensitive substring of target.
func (c *Catalog) ResolveCareer(target string) (Career, bool) {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return Career{}, false
	}
	for _, career := range c.careers {
		if strings.Contains(needle, strings.ToLower(career.Name)) {
			return Career{Name: career.Name, Subjects: append([]string(nil), career.Subjects...)}, true
		}
	}
	return Career{}, false
}

// CareerSubjects returns the subjects of the career resolved from target.
func (c *Catalog) CareerSubjects(target string) []string {
	career, ok := c.ResolveCareer(target)
	if !ok {
		return nil
	}
	return career.Subjects
}
