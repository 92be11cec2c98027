// Package content loads the static training library: builtin scenarios,
// law references and courses.
package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"police_training_backend/models"
	"police_training_backend/scenario"
)

//go:embed data
var defaultData embed.FS

var ErrNotFound = errors.New("content not found")

type Catalog struct {
	scenarios     map[string]models.Scenario
	scenarioOrder []string
	laws          map[string]models.Law
	lawOrder      []string
	courses       map[string]models.Course
	courseOrder   []string
}

// Default loads the library compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// Load reads a content directory laid out as scenarios/, laws/ and courses/.
func Load(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

func LoadFS(fsys fs.FS) (*Catalog, error) {
	cat := &Catalog{
		scenarios: map[string]models.Scenario{},
		laws:      map[string]models.Law{},
		courses:   map[string]models.Course{},
	}

	err := eachDocument(fsys, "scenarios", func(name string, raw []byte) error {
		if err := ValidateScenarioJSON(raw); err != nil {
			return err
		}
		var s models.Scenario
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if err := scenario.Validate(s); err != nil {
			return err
		}
		if _, dup := cat.scenarios[s.ID]; dup {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		s.Source = models.SourceBuiltin
		s.Published = true
		cat.scenarios[s.ID] = s
		cat.scenarioOrder = append(cat.scenarioOrder, s.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachDocument(fsys, "laws", func(name string, raw []byte) error {
		var law models.Law
		if err := json.Unmarshal(raw, &law); err != nil {
			return err
		}
		if law.ID == "" || law.Title == "" {
			return errors.New("law requires id and title")
		}
		if _, dup := cat.laws[law.ID]; dup {
			return fmt.Errorf("duplicate law id %q", law.ID)
		}
		cat.laws[law.ID] = law
		cat.lawOrder = append(cat.lawOrder, law.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachDocument(fsys, "courses", func(name string, raw []byte) error {
		var course models.Course
		if err := json.Unmarshal(raw, &course); err != nil {
			return err
		}
		if course.ID == "" || course.Title == "" {
			return errors.New("course requires id and title")
		}
		if _, dup := cat.courses[course.ID]; dup {
			return fmt.Errorf("duplicate course id %q", course.ID)
		}
		for _, id := range course.ScenarioIDs {
			if _, ok := cat.scenarios[id]; !ok {
				return fmt.Errorf("course %q references unknown scenario %q", course.ID, id)
			}
		}
		for _, id := range course.LawIDs {
			if _, ok := cat.laws[id]; !ok {
				return fmt.Errorf("course %q references unknown law %q", course.ID, id)
			}
		}
		cat.courses[course.ID] = course
		cat.courseOrder = append(cat.courseOrder, course.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(cat.scenarioOrder)
	sort.Strings(cat.lawOrder)
	sort.Strings(cat.courseOrder)
	return cat, nil
}

// eachDocument calls fn once per document found in dir. A file may hold a
// single document or a list of them, in JSON or YAML.
func eachDocument(fsys fs.FS, dir string, fn func(name string, raw []byte) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := path.Join(dir, entry.Name())
		ext := strings.ToLower(path.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if ext != ".json" {
			if data, err = yamlToJSON(data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}

		docs, err := splitDocuments(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for i, raw := range docs {
			if err := fn(name, raw); err != nil {
				return fmt.Errorf("%s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

func splitDocuments(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return json.Marshal(doc)
}

func (c *Catalog) Scenarios() []models.Scenario {
	out := make([]models.Scenario, 0, len(c.scenarioOrder))
	for _, id := range c.scenarioOrder {
		out = append(out, c.scenarios[id])
	}
	return out
}

func (c *Catalog) Scenario(id string) (models.Scenario, error) {
	s, ok := c.scenarios[id]
	if !ok {
		return models.Scenario{}, ErrNotFound
	}
	return s, nil
}

// Laws returns every law whose code, title or tags contain query, ignoring case.
// An empty query returns all of them.
func (c *Catalog) Laws(query string) []models.Law {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Law, 0)
	for _, id := range c.lawOrder {
		law := c.laws[id]
		if query == "" || lawMatches(law, query) {
			out = append(out, law)
		}
	}
	return out
}

func lawMatches(law models.Law, query string) bool {
	if strings.Contains(strings.ToLower(law.Code), query) || strings.Contains(strings.ToLower(law.Title), query) {
		return true
	}
	for _, tag := range law.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (c *Catalog) Law(id string) (models.Law, error) {
	law, ok := c.laws[id]
	if !ok {
		return models.Law{}, ErrNotFound
	}
	return law, nil
}

func (c *Catalog) Courses() []models.Course {
	out := make([]models.Course, 0, len(c.courseOrder))
	for _, id := range c.courseOrder {
		out = append(out, c.courses[id])
	}
	return out
}

func (c *Catalog) Course(id string) (models.Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return models.Course{}, ErrNotFound
	}
	return course, nil
}
