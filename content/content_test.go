package content

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police_training_backend/models"
	"police_training_backend/scenario"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	scenarios := cat.Scenarios()
	require.Len(t, scenarios, 3)
	assert.Equal(t, "domestic-call", scenarios[0].ID)
	for _, s := range scenarios {
		assert.Equal(t, models.SourceBuiltin, s.Source)
		assert.NoError(t, scenario.Validate(s))
	}

	shoplifting, err := cat.Scenario("shoplifting")
	require.NoError(t, err)
	assert.Equal(t, 20, scenario.MaxScore(shoplifting))

	_, err = cat.Scenario("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, cat.Courses(), 2)
	course, err := cat.Course("basic-patrol")
	require.NoError(t, err)
	assert.Equal(t, []string{"traffic-stop", "shoplifting"}, course.ScenarioIDs)
}

func TestLawSearch(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.Len(t, cat.Laws(""), 4)

	found := cat.Laws("MINOR")
	require.Len(t, found, 1)
	assert.Equal(t, "juvenile-rights", found[0].ID)

	found = cat.Laws("tra 12")
	require.Len(t, found, 1)
	assert.Equal(t, "traffic-stop-powers", found[0].ID)

	assert.Empty(t, cat.Laws("maritime"))

	_, err = cat.Law("use-of-force")
	assert.NoError(t, err)
}

const validScenario = `{
  "id": "s1", "title": "S1",
  "scenes": [{"id": "a", "title": "A", "options": [
    {"id": "x", "text": "X", "correct": true, "score": 1},
    {"id": "y", "text": "Y", "correct": false, "score": 0}
  ]}]
}`

func TestLoadFSErrors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name:  "schema violation",
			files: fstest.MapFS{"scenarios/bad.json": {Data: []byte(`{"id": "Bad ID", "title": "x", "scenes": []}`)}},
			want:  "schema validation failed",
		},
		{
			name: "no correct option",
			files: fstest.MapFS{"scenarios/bad.json": {Data: []byte(`{"id": "s1", "title": "S1", "scenes": [{"id": "a", "title": "A", "options": [
				{"id": "x", "text": "X", "correct": false, "score": 1},
				{"id": "y", "text": "Y", "correct": false, "score": 0}]}]}`)}},
			want: "at least one option must be correct",
		},
		{
			name: "duplicate scenario",
			files: fstest.MapFS{
				"scenarios/a.json": {Data: []byte(validScenario)},
				"scenarios/b.json": {Data: []byte(validScenario)},
			},
			want: `duplicate scenario id "s1"`,
		},
		{
			name: "unknown course reference",
			files: fstest.MapFS{
				"scenarios/a.json": {Data: []byte(validScenario)},
				"courses/c.yaml":   {Data: []byte("id: c1\ntitle: C\nscenario_ids: [s2]\n")},
			},
			want: `references unknown scenario "s2"`,
		},
		{
			name:  "broken yaml",
			files: fstest.MapFS{"laws/l.yml": {Data: []byte("id: [unterminated")}},
			want:  "invalid YAML",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.files)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFSSkipsOtherFiles(t *testing.T) {
	cat, err := LoadFS(fstest.MapFS{
		"scenarios/a.json":    {Data: []byte(validScenario)},
		"scenarios/README.md": {Data: []byte("# notes")},
		"laws/empty.yaml":     {Data: []byte("")},
	})
	require.NoError(t, err)
	assert.Len(t, cat.Scenarios(), 1)
	assert.Empty(t, cat.Laws(""))
	assert.Empty(t, cat.Courses())
}

func TestLoadDir(t *testing.T) {
	_, err := Load(t.TempDir() + "/missing")
	assert.Error(t, err)

	cat, err := Load("data")
	require.NoError(t, err)
	assert.Len(t, cat.Scenarios(), 3)
}

func TestValidateScenarioJSON(t *testing.T) {
	assert.NoError(t, ValidateScenarioJSON([]byte(validScenario)))
	assert.Error(t, ValidateScenarioJSON([]byte(`{"id": "s1"`)))
	assert.Error(t, ValidateScenarioJSON([]byte(`{"id": "s1", "title": "S", "scenes": [{"id": "a", "title": "A", "options": [
		{"id": "x", "text": "X", "correct": true, "score": -1},
		{"id": "y", "text": "Y", "correct": false, "score": 0}]}]}`)))
}
