package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	ds := Dataset{
		Headers: []string{"Teacher", "Absent"},
		Rows: []map[string]string{
			{"Teacher": "sana ahmed", "Absent": "2"},
			{"Teacher": "hina khan"},
		},
	}

	out, err := NewCSVExporter().Render(ds)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t, "Teacher,Absent\nsana ahmed,2\nhina khan,\n", string(out[len(utf8BOM):]))
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	ds := Dataset{
		Headers: []string{"Teacher", "Present", "Absent"},
		Rows:    []map[string]string{{"Teacher": "sana ahmed", "Present": "4", "Absent": "1"}},
	}

	out, err := NewPDFExporter().Render(ds, "Attendance Report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsDoubleLabelColumn(t *testing.T) {
	widths := columnWidths(4)
	require.Len(t, widths, 4)
	assert.InDelta(t, 76.0, widths[0], 0.001)
	assert.InDelta(t, 38.0, widths[1], 0.001)
}
