package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_Semicolon(t *testing.T) {
	path := writeTempFile(t, "source.csv", "Date;Name;Budget\n15.03.2024;Tech Reviews;5 000,00\n")

	tbl, err := ReadCSV(path, ';')
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Name", "Budget"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "5 000,00", tbl.Rows[0][2])
}

func TestReadCSV_DefaultDelimiter(t *testing.T) {
	path := writeTempFile(t, "out.csv", "a,b\n1,2\n")

	tbl, err := ReadCSV(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
}

func TestReadCSV_RaggedRows(t *testing.T) {
	path := writeTempFile(t, "ragged.csv", "a;b;c\n1;2\n1;2;3;4\n")

	tbl, err := ReadCSV(path, ';')
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0], 2)
	assert.Len(t, tbl.Rows[1], 4)
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), ';')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table: open")
}

func TestReadCSV_Empty(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	tbl, err := ReadCSV(path, ';')
	require.NoError(t, err)
	assert.Empty(t, tbl.Header)
	assert.Empty(t, tbl.Rows)
}

func TestRead_DispatchesOnExtension(t *testing.T) {
	path := writeTempFile(t, "source.txt", "a;b\n1;2\n")

	tbl, err := Read(path, ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
}

func writeTempXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, row := range rows {
			r := sheet.AddRow()
			for _, cell := range row {
				r.AddCell().Value = cell
			}
		}
	}
	path := filepath.Join(t.TempDir(), "source.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTempXLSX(t, map[string][][]string{
		"Integrations": {
			{"Date", "Name"},
			{"15.03.2024", "Tech Reviews"},
		},
	})

	tbl, err := ReadXLSX(path, XLSXOptions{SheetName: "Integrations"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Name"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Tech Reviews", tbl.Rows[0][1])
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	path := writeTempXLSX(t, map[string][][]string{"Data": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Other" not found`)
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := writeTempXLSX(t, map[string][][]string{"Data": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestColumnIndexAndCell(t *testing.T) {
	tbl := &Table{Header: []string{" Date ", "Name"}}
	idx := tbl.ColumnIndex()

	row := []string{"15.03.2024", "Tech Reviews"}
	assert.Equal(t, "15.03.2024", tbl.Cell(row, idx, "Date"))
	assert.Equal(t, "", tbl.Cell(row, idx, "Budget"))
	assert.Equal(t, "", tbl.Cell([]string{"only"}, idx, "Name"))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := WriteCSV(path, []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)

	tbl, err := ReadCSV(path, ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, tbl.Rows)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	err := WriteJSON(path, map[string]string{"url": "https://youtu.be/x?a=1&b=2"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "https://youtu.be/x?a=1&b=2"`)
	// HTML escaping is off so URLs stay readable.
	assert.NotContains(t, string(data), `&`)
}
