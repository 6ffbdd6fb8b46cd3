package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"resume-parser-go/internal/types"
)

func strPtr(s string) *string { return &s }

func TestWriteXLSX(t *testing.T) {
	rows := []Row{
		{
			Source: "resumes/jane.pdf",
			Record: types.ParseRecord{
				Name:       strPtr("Jane Smith"),
				Email:      strPtr("jane@example.com"),
				Skills:     []string{"Python", "SQL"},
				Experience: []string{"Analyst at Acme", "Built dashboards"},
				Projects:   []string{},
			},
			Education:  1,
			Confidence: 60,
		},
		{Source: "resumes/broken.docx", Err: "unsupported"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"Source", "Name", "Email", "Phone", "Confidence", "Skills", "Experience", "Projects", "Education", "Error"}, got[0])
	assert.Equal(t, []string{"resumes/jane.pdf", "Jane Smith", "jane@example.com", "", "60", "Python, SQL", "2", "0", "1"}, got[1])
	assert.Equal(t, "resumes/broken.docx", got[2][0])
	assert.Equal(t, "unsupported", got[2][9])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
