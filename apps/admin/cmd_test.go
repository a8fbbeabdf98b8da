package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	db, err := database.Open(core.DatabaseConfig{Engine: core.EngineSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	cli := &commandLine{db: db}

	defer func(f func(string, *sql.DB, fs.FS, string, ...string) error) { gooseRunFunc = f }(gooseRunFunc)
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attendance", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})

	t.Run("without an SQL database", func(t *testing.T) {
		err := (&commandLine{}).run([]string{"admin", "migrate", "up"})
		assert.Equal(t, errNoSQLDatabase, err)
	})
}

const seedFixtures = `
teachers:
  - {firstName: Grace, lastName: Hopper, email: grace@school.test, department: Computer Science}
courses:
  - {code: ICS4U, name: Computer Science, teacherId: 1, semester: S1, room: "204"}
students:
  - {firstName: Ada, lastName: Lovelace, grade: 12, studentNumber: S-100, homeroom: 12A}
  - {firstName: Alan, lastName: Turing, grade: 11, studentNumber: S-101}
tests:
  - {studentId: 1, courseId: 1, testName: Loops, date: "2025-10-01", mark: 8, outOf: 10, weight: 1}
  - {studentId: 2, courseId: 1, testName: Loops, date: "2025-10-01", mark: 10, outOf: 10, weight: 1}
`

func writeFixtures(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_commandLine_seed(t *testing.T) {
	ctx := context.Background()
	path := writeFixtures(t, seedFixtures)

	defer func(f func(string) bool) { confirmFunc = f }(confirmFunc)
	confirmFunc = func(string) bool { return false }

	t.Run("usage", func(t *testing.T) {
		cli := &commandLine{svc: testutil.NewService(t)}
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		runCLITests(t, cli, []cliTest{
			{name: "no file", args: []string{"seed"}, wantErr: errHelp},
			{name: "missing file", args: []string{"seed", "-file", missing}, wantErrStr: "reading fixtures: open " + missing + ": no such file or directory"},
		})
	})

	t.Run("empty store", func(t *testing.T) {
		svc := testutil.NewService(t)
		cli := &commandLine{svc: svc}
		require.NoError(t, cli.run([]string{"admin", "seed", "-file", path}))

		tests, err := svc.Tests.List(ctx)
		require.NoError(t, err)
		assert.Len(t, tests, 2)
		avg, err := svc.Stats.CourseAverage(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, school.CourseAverage{CourseID: 1, Summary: school.Summary{TestCount: 2, Average: testutil.FloatPtr(90)}}, avg)
	})

	t.Run("non-empty store", func(t *testing.T) {
		svc := testutil.NewService(t)
		testutil.CreateTeacher(t, svc, "Alan", "Kay", "alan@school.test")
		cli := &commandLine{svc: svc}

		assert.Equal(t, errAborted, cli.run([]string{"admin", "seed", "-file", path}))
		teachers, err := svc.Teachers.List(ctx)
		require.NoError(t, err)
		assert.Len(t, teachers, 1)

		require.NoError(t, cli.run([]string{"admin", "seed", "-force", "-file", path}))
		crs, err := svc.Courses.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, crs.TeacherID, "fixture references are positions, not ids")
	})

	t.Run("bad reference", func(t *testing.T) {
		cli := &commandLine{svc: testutil.NewService(t)}
		bad := writeFixtures(t, `
teachers:
  - {firstName: Grace, lastName: Hopper, email: grace@school.test, department: CS}
courses:
  - {code: ICS4U, name: Computer Science, teacherId: 3, semester: S1, room: "204"}
`)
		assert.EqualError(t, cli.run([]string{"admin", "seed", "-file", bad}), "course 1: unknown teacher 3")
	})
}
