package school_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/dummy"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

func TestParseRelations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		allowed []school.Relation
		want    school.Relations
		wantErr string
	}{
		{name: "empty", raw: "", allowed: school.TestRelations, want: school.Relations{}},
		{name: "single", raw: "teacher", allowed: school.CourseRelations, want: school.Relations{school.RelationTeacher: true}},
		{
			name: "several, spaced and upper case", raw: " Student , COURSE,", allowed: school.TestRelations,
			want: school.Relations{school.RelationStudent: true, school.RelationCourse: true},
		},
		{name: "unknown token", raw: "student,grades", allowed: school.TestRelations, wantErr: `unknown relation "grades"`},
		{name: "not applicable", raw: "student", allowed: school.CourseRelations, wantErr: `relation "student" cannot be populated here`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := school.ParseRelations(tt.raw, tt.allowed...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			vErr, ok := errors.Cause(err).(*core.ValidationError)
			require.True(t, ok, "got %T", err)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, "populate", vErr.Fields[0].Field)
			assert.Equal(t, tt.wantErr, vErr.Fields[0].Error)
		})
	}
}

func TestExpander(t *testing.T) {
	ctx := context.Background()
	db := dummydb.Open()
	svc := school.NewService(db, core.NewValidator())

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	crs := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	tst := testutil.CreateTest(t, svc, std.ID, crs.ID, 8, 10)

	// a course whose teacher is gone, written around the guard
	dangling := crs
	dangling.ID = 50
	dangling.TeacherID = 404
	body, err := json.Marshal(dangling)
	require.NoError(t, err)
	require.NoError(t, db.Insert(ctx, school.KindCourse, school.Document{
		ID: dangling.ID, Refs: map[string]int{school.FieldTeacherID: dangling.TeacherID}, Body: body,
	}))

	t.Run("no relations leaves bare ids", func(t *testing.T) {
		got, err := svc.Expander.Test(ctx, tst, school.Relations{})
		require.NoError(t, err)
		assert.Equal(t, std.ID, got.StudentID)
		assert.Equal(t, crs.ID, got.CourseID)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, float64(std.ID), m["studentId"])
		assert.Equal(t, float64(crs.ID), m["courseId"])
		assert.Equal(t, "Unit Test", m["testName"])
	})

	t.Run("expands requested relations only", func(t *testing.T) {
		got, err := svc.Expander.Test(ctx, tst, school.Relations{school.RelationStudent: true})
		require.NoError(t, err)
		assert.Equal(t, &std, got.StudentID)
		assert.Equal(t, crs.ID, got.CourseID)
	})

	t.Run("dangling reference becomes null", func(t *testing.T) {
		courses, err := svc.Courses.List(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 2)

		got, err := svc.Expander.Courses(ctx, courses, school.Relations{school.RelationTeacher: true})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, &tch, got[0].TeacherID)
		assert.Nil(t, got[1].TeacherID)

		data, err := json.Marshal(got[1])
		require.NoError(t, err)
		assert.Contains(t, string(data), `"teacherId":null`)
	})
}
