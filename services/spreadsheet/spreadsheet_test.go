package sheetsvc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadStudents(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Student Number", "Notes", "firstName", "LastName", "Grade", "Homeroom"},
		[]interface{}{"S-1", "", " Ada ", "Lovelace", 12, "12A"},
		[]interface{}{},
		[]interface{}{"S-2", "", "Bob", "Kahn", "eleven"},
		[]interface{}{"S-3", "", "Kim", "", "11"},
	)

	students, rowErrs, err := ReadStudents(buf)
	require.NoError(t, err)

	grade12, grade11 := 12, 11
	assert.Equal(t, []StudentRow{
		{Row: 2, Student: school.NewStudent{FirstName: "Ada", LastName: "Lovelace", Grade: &grade12, StudentNumber: "S-1", Homeroom: "12A"}},
		{Row: 5, Student: school.NewStudent{FirstName: "Kim", Grade: &grade11, StudentNumber: "S-3"}},
	}, students)
	assert.Equal(t, []RowError{{Row: 4, Error: `invalid grade "eleven"`}}, rowErrs)
}

func TestReadStudents_badWorkbook(t *testing.T) {
	_, _, err := ReadStudents(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)

	_, _, err = ReadStudents(workbook(t, []interface{}{"firstName", "lastName", "grade"}))
	assert.EqualError(t, err, `missing "studentnumber" column`)
}

func TestWriteGradebook(t *testing.T) {
	std := school.Student{ID: 1, FirstName: "Ada", LastName: "Lovelace", StudentNumber: "S-1"}
	entries := []GradebookEntry{
		{Test: school.Test{ID: 1, TestName: "Loops", Date: "2025-10-01", Mark: 8, OutOf: 10, Weight: 1}, Student: &std},
		{Test: school.Test{ID: 2, TestName: "Recursion", Date: "2025-10-08", Mark: 10, OutOf: 10, Weight: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGradebook(&buf, school.Course{Code: "ICS4U", Name: "Computer Science"}, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Gradebook")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, gradebookHeaders, rows[0])
	assert.Equal(t, []string{"S-1", "Lovelace, Ada", "Loops", "2025-10-01", "8", "10", "1", "80"}, rows[1])
	assert.Equal(t, []string{"", "", "Recursion", "2025-10-08", "10", "10", "1", "100"}, rows[2])
	assert.Empty(t, rows[3])
	assert.Equal(t, "Average", rows[4][0])
	assert.Equal(t, "90", rows[4][7])
}
