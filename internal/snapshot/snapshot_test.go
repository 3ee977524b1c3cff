package snapshot

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todopath/todopath/internal/domain"
)

func sampleTasks() []domain.TaskSnapshot {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := created.Add(48 * time.Hour)
	return []domain.TaskSnapshot{
		{ID: "tp-2", Content: "ship it", Dependencies: []string{"tp-1"}, EstimatedHours: 2.5, Deadline: &deadline, CreatedAt: created},
		{ID: "tp-1", Content: "build", Completed: true, Dependencies: []string{}, CreatedAt: created},
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			doc := New("demo", sampleTasks(), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
			var buf bytes.Buffer

			require.NoError(t, Encode(&buf, doc, format))
			got, err := Decode(&buf, format)

			require.NoError(t, err)
			assert.Equal(t, "demo", got.Project)
			require.Len(t, got.Tasks, 2)
			assert.Equal(t, "tp-2", got.Tasks[0].ID)
			assert.Equal(t, []string{"tp-1"}, got.Tasks[0].Dependencies)
			assert.Equal(t, 2.5, got.Tasks[0].EstimatedHours)
			assert.True(t, got.Tasks[0].Deadline.Equal(*sampleTasks()[0].Deadline))
			assert.True(t, got.Tasks[1].Completed)
			assert.Equal(t, []string{}, got.Tasks[1].Dependencies)
		})
	}
}

func TestEncodeYAMLOmitsDerivedFields(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Encode(&buf, New("demo", sampleTasks(), time.Now()), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "content: ship it")
	assert.NotContains(t, out, "calculated")
	assert.NotContains(t, out, "delay_status")
}

func TestDecodeHandWrittenYAML(t *testing.T) {
	in := `
version: 1
tasks:
  - id: b
    content: second
    dependencies: [a]
    estimated_hours: 3
    created_at: 2024-03-01T09:00:00Z
  - id: a
    content: first
    created_at: 2024-03-01T09:00:00Z
`
	doc, err := Decode(strings.NewReader(in), FormatYAML)

	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, []string{"a"}, doc.Tasks[0].Dependencies)
	assert.Equal(t, []string{}, doc.Tasks[1].Dependencies)
	assert.Nil(t, doc.Tasks[1].Deadline)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode(strings.NewReader("version: 7\ntasks: []\n"), FormatYAML)

	assert.ErrorContains(t, err, "version 7")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), FormatJSON)

	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatYAML, "YAML": FormatYAML, "yml": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatForPath("plan.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("plan.yaml"))
}
