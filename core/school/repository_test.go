package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T: %v", errors.Cause(err), err)
	names := make([]string, 0, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		names = append(names, fld.Field)
	}
	return names
}

func TestTeacherRepository_Create(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	now := time.Date(2025, 9, 2, 8, 30, 0, 0, time.UTC)
	defer school.SetNowFunc(func() time.Time { return now })()

	tests := []struct {
		name       string
		nt         school.NewTeacher
		wantFields []string
		want       school.Teacher
	}{
		{name: "all fields missing", wantFields: []string{"firstName", "lastName", "email", "department"}},
		{
			name:       "blank fields",
			nt:         school.NewTeacher{FirstName: "  ", LastName: "Turing", Email: "alan@school.test", Department: "\t"},
			wantFields: []string{"firstName", "department"},
		},
		{
			name: "created",
			nt:   school.NewTeacher{FirstName: " Alan ", LastName: "Turing", Email: "Alan@School.TEST", Department: "CS"},
			want: school.Teacher{
				ID: 1, FirstName: "Alan", LastName: "Turing", Email: "alan@school.test", Department: "CS",
				CreatedAt: now, UpdatedAt: now,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tch, err := svc.Teachers.Create(ctx, tt.nt)
			if tt.wantFields != nil {
				assert.ElementsMatch(t, tt.wantFields, fieldNames(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tch)

			got, err := svc.Teachers.Get(ctx, tch.ID)
			require.NoError(t, err)
			assert.Equal(t, tch, got)
		})
	}
}

func TestRepository_createdThenFetchedAreEqual(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	crs := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	tst := testutil.CreateTest(t, svc, std.ID, crs.ID, 42.5, 50)

	gotTch, err := svc.Teachers.Get(ctx, tch.ID)
	require.NoError(t, err)
	assert.Equal(t, tch, gotTch)

	gotCrs, err := svc.Courses.Get(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, gotCrs)

	gotStd, err := svc.Students.Get(ctx, std.ID)
	require.NoError(t, err)
	assert.Equal(t, std, gotStd)

	gotTst, err := svc.Tests.Get(ctx, tst.ID)
	require.NoError(t, err)
	assert.Equal(t, tst, gotTst)
}

func TestRepository_getUnknown(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	_, err := svc.Teachers.Get(ctx, 7)
	assert.True(t, core.IsNotFound(err))
	assert.EqualError(t, err, "teacher not found")

	_, err = svc.Courses.Get(ctx, 7)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.Students.Get(ctx, 7)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.Tests.Get(ctx, 7)
	assert.True(t, core.IsNotFound(err))
}

func TestRepository_listIsOrderedAndStable(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	var want []school.Student
	for _, name := range []string{"Zed", "Amy", "Bob", "Kim"} {
		want = append(want, testutil.CreateStudent(t, svc, name, "Doe", "S-"+name))
	}

	first, err := svc.Students.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, first)

	second, err := svc.Students.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStudentRepository_Update(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	created := time.Date(2025, 9, 2, 8, 30, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	reset := school.SetNowFunc(func() time.Time { return created })
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	reset()
	defer school.SetNowFunc(func() time.Time { return updated })()

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := svc.Students.Update(ctx, std.ID, school.UpdateStudent{})
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, errors.Cause(err))
		assert.EqualError(t, err, "cannot update student: no fields to update")

		got, err := svc.Students.Get(ctx, std.ID)
		require.NoError(t, err)
		assert.Equal(t, std, got)
	})

	t.Run("blank field rejected", func(t *testing.T) {
		_, err := svc.Students.Update(ctx, std.ID, school.UpdateStudent{LastName: testutil.StringPtr("  ")})
		assert.Equal(t, []string{"lastName"}, fieldNames(t, err))
	})

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.Students.Update(ctx, 99, school.UpdateStudent{Grade: testutil.IntPtr(11)})
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("only supplied fields change", func(t *testing.T) {
		got, err := svc.Students.Update(ctx, std.ID, school.UpdateStudent{
			Grade:    testutil.IntPtr(11),
			Homeroom: testutil.StringPtr(""),
		})
		require.NoError(t, err)

		want := std
		want.Grade = 11
		want.Homeroom = ""
		want.UpdatedAt = updated
		assert.Equal(t, want, got)

		stored, err := svc.Students.Get(ctx, std.ID)
		require.NoError(t, err)
		assert.Equal(t, want, stored)
	})
}

func TestCourseRepository_CreateUpdate(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	other := testutil.CreateTeacher(t, svc, "Alan", "Turing", "alan@school.test")

	t.Run("missing teacherId", func(t *testing.T) {
		_, err := svc.Courses.Create(ctx, school.NewCourse{Code: "ICS4U", Name: "CS", Semester: "S1", Room: "101"})
		assert.Equal(t, []string{"teacherId"}, fieldNames(t, err))
	})

	t.Run("unknown teacherId", func(t *testing.T) {
		_, err := svc.Courses.Create(ctx, school.NewCourse{Code: "ICS4U", Name: "CS", TeacherID: 99, Semester: "S1", Room: "101"})
		refErr, ok := errors.Cause(err).(*core.ReferenceError)
		require.True(t, ok, "got %T", errors.Cause(err))
		assert.Equal(t, school.FieldTeacherID, refErr.Field)
		assert.Equal(t, "teacher 99 does not exist", refErr.Detail())
	})

	crs, err := svc.Courses.Create(ctx, school.NewCourse{Code: "ICS4U", Name: "CS", TeacherID: tch.ID, Semester: "S1", Room: "101"})
	require.NoError(t, err)
	assert.Equal(t, "", crs.Schedule)

	t.Run("update to unknown teacherId", func(t *testing.T) {
		_, err := svc.Courses.Update(ctx, crs.ID, school.UpdateCourse{TeacherID: testutil.IntPtr(99)})
		assert.IsType(t, &core.ReferenceError{}, errors.Cause(err))

		got, err := svc.Courses.Get(ctx, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, tch.ID, got.TeacherID)
	})

	t.Run("update teacherId", func(t *testing.T) {
		got, err := svc.Courses.Update(ctx, crs.ID, school.UpdateCourse{TeacherID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, got.TeacherID)
		assert.Equal(t, crs.Code, got.Code)
	})
}

func TestTestRepository_Create(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	crs := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")

	newTest := func(studentID, courseID int, outOf float64) school.NewTest {
		return school.NewTest{
			StudentID: studentID,
			CourseID:  courseID,
			TestName:  "Recursion",
			Date:      "2025-10-01",
			Mark:      testutil.FloatPtr(0),
			OutOf:     testutil.FloatPtr(outOf),
			Weight:    testutil.FloatPtr(0.25),
		}
	}

	tests := []struct {
		name      string
		nt        school.NewTest
		wantField string
	}{
		{name: "unknown student and course", nt: newTest(99, 98, 10), wantField: school.FieldStudentID},
		{name: "unknown student", nt: newTest(99, crs.ID, 10), wantField: school.FieldStudentID},
		{name: "unknown course", nt: newTest(std.ID, 98, 10), wantField: school.FieldCourseID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Tests.Create(ctx, tt.nt)
			refErr, ok := errors.Cause(err).(*core.ReferenceError)
			require.True(t, ok, "got %T", errors.Cause(err))
			assert.Equal(t, tt.wantField, refErr.Field)

			all, err := svc.Tests.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}

	t.Run("outOf must be positive", func(t *testing.T) {
		_, err := svc.Tests.Create(ctx, newTest(std.ID, crs.ID, 0))
		assert.Equal(t, []string{"outOf"}, fieldNames(t, err))
	})

	t.Run("zero mark is a valid mark", func(t *testing.T) {
		tst, err := svc.Tests.Create(ctx, newTest(std.ID, crs.ID, 10))
		require.NoError(t, err)
		assert.Equal(t, 0.0, tst.Mark)
		assert.Equal(t, 1, tst.ID)
	})
}

func TestTestRepository_ListByParent(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	cs := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	math := testutil.CreateCourse(t, svc, "MHF4U", tch.ID)
	ada := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	bob := testutil.CreateStudent(t, svc, "Bob", "Kahn", "S-101")

	t1 := testutil.CreateTest(t, svc, ada.ID, cs.ID, 8, 10)
	t2 := testutil.CreateTest(t, svc, bob.ID, cs.ID, 9, 10)
	t3 := testutil.CreateTest(t, svc, ada.ID, math.ID, 7, 10)

	got, err := svc.Tests.ListByStudent(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []school.Test{t1, t3}, got)

	got, err = svc.Tests.ListByCourse(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, []school.Test{t1, t2}, got)

	_, err = svc.Tests.ListByStudent(ctx, 99)
	assert.True(t, core.IsNotFound(err))
	assert.EqualError(t, err, "student not found")
	_, err = svc.Tests.ListByCourse(ctx, 99)
	assert.True(t, core.IsNotFound(err))
}
