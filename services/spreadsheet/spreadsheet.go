package sheetsvc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RowError reports a spreadsheet row that could not be turned into a record. Row is 1-based.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// StudentRow is a parsed student row. Row is 1-based.
type StudentRow struct {
	Row     int
	Student school.NewStudent
}

var requiredStudentColumns = []string{"firstname", "lastname", "grade", "studentnumber"}

// ReadStudents reads students from the first sheet of an xlsx workbook.
// The first row is a header naming the columns (firstName, lastName, grade, studentNumber, homeroom; any order,
// case and spaces ignored). Rows that cannot be parsed are reported as RowErrors; empty rows are skipped.
func ReadStudents(r io.Reader) ([]StudentRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading rows")
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("workbook has no header row")
	}

	cols := make(map[string]int)
	for i, header := range rows[0] {
		cols[strings.ToLower(strings.ReplaceAll(header, " ", ""))] = i
	}
	for _, name := range requiredStudentColumns {
		if _, ok := cols[name]; !ok {
			return nil, nil, errors.Errorf("missing %q column", name)
		}
	}

	var (
		students []StudentRow
		rowErrs  []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlank(row) {
			continue
		}

		ns := school.NewStudent{
			FirstName:     cell("firstname"),
			LastName:      cell("lastname"),
			StudentNumber: cell("studentnumber"),
			Homeroom:      cell("homeroom"),
		}
		if raw := cell("grade"); raw != "" {
			grade, err := strconv.Atoi(raw)
			if err != nil {
				rowErrs = append(rowErrs, RowError{Row: rowNum, Error: fmt.Sprintf("invalid grade %q", raw)})
				continue
			}
			ns.Grade = &grade
		}
		students = append(students, StudentRow{Row: rowNum, Student: ns})
	}
	return students, rowErrs, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// GradebookEntry is one test of a gradebook; Student is nil if the student no longer exists.
type GradebookEntry struct {
	Test    school.Test
	Student *school.Student
}

var gradebookHeaders = []string{"Student Number", "Student", "Test", "Date", "Mark", "Out Of", "Weight", "Percentage"}

// WriteGradebook writes the tests of a course as an xlsx workbook, followed by the course average.
func WriteGradebook(w io.Writer, crs school.Course, entries []GradebookEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Gradebook"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: crs.Code + " " + crs.Name, Subject: "Gradebook"}); err != nil {
		return errors.Wrap(err, "setting properties")
	}
	for i, header := range gradebookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	tests := make([]school.Test, 0, len(entries))
	for i, entry := range entries {
		tst := entry.Test
		tests = append(tests, tst)

		var number, name string
		if entry.Student != nil {
			number = entry.Student.StudentNumber
			name = entry.Student.LastName + ", " + entry.Student.FirstName
		}
		values := []interface{}{number, name, tst.TestName, tst.Date, tst.Mark, tst.OutOf, tst.Weight, tst.Percentage()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing test %d", tst.ID)
		}
	}

	summary := school.Summarize(tests)
	avgRow := len(entries) + 3
	values := []interface{}{"Average", nil, nil, nil, nil, nil, nil, nil}
	if summary.Average != nil {
		values[7] = *summary.Average
	}
	cell, _ := excelize.CoordinatesToCellName(1, avgRow)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrap(err, "writing average")
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}
