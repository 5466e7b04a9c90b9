package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shiftDataset() Dataset {
	return Dataset{
		Headers: []string{"Worker", "1", "2"},
		Rows: []map[string]string{
			{"Worker": "Anna", "1": "D", "2": "N"},
			{"Worker": "Ola", "1": "W"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(shiftDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Worker,1,2", lines[0])
	assert.Equal(t, "Anna,D,N", lines[1])
	assert.Equal(t, "Ola,W,", lines[2], "missing cells render empty")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(shiftDataset(), "Shift table 2021-02")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
