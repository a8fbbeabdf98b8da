package school_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/dummy"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

func TestGuard_CheckReferenceExists(t *testing.T) {
	ctx := context.Background()
	db := dummydb.Open()
	svc := school.NewService(db, core.NewValidator())
	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")

	guard := school.NewGuard(db)
	tests := []struct {
		name    string
		id      int
		wantErr bool
	}{
		{name: "existing", id: tch.ID},
		{name: "unknown", id: tch.ID + 1, wantErr: true},
		{name: "zero", id: 0, wantErr: true},
		{name: "negative", id: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.CheckReferenceExists(ctx, school.FieldTeacherID, school.KindTeacher, tt.id)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.IsType(t, &core.ReferenceError{}, err)
			assert.EqualError(t, err, "invalid teacherId")
		})
	}
}

func TestDelete_blockedByDependents(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	crs1 := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	crs2 := testutil.CreateCourse(t, svc, "ICS3U", tch.ID)
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	tst := testutil.CreateTest(t, svc, std.ID, crs1.ID, 8, 10)

	assertConflict := func(t *testing.T, err error, msg string) {
		t.Helper()
		require.Error(t, err)
		assert.IsType(t, &core.ConflictError{}, errors.Cause(err))
		assert.Equal(t, msg, errors.Cause(err).Error())
	}

	_, err := svc.Teachers.Delete(ctx, tch.ID)
	assertConflict(t, err, "cannot delete teacher 1: it has 2 dependent courses")
	_, err = svc.Courses.Delete(ctx, crs1.ID)
	assertConflict(t, err, "cannot delete course 1: it has 1 dependent tests")
	_, err = svc.Students.Delete(ctx, std.ID)
	assertConflict(t, err, "cannot delete student 1: it has 1 dependent tests")

	// a blocked delete leaves the record in place
	got, err := svc.Teachers.Get(ctx, tch.ID)
	require.NoError(t, err)
	assert.Equal(t, tch, got)

	// tests have no dependents
	deleted, err := svc.Tests.Delete(ctx, tst.ID)
	require.NoError(t, err)
	assert.Equal(t, tst, deleted)
	_, err = svc.Tests.Get(ctx, tst.ID)
	assert.True(t, core.IsNotFound(err))

	deletedStd, err := svc.Students.Delete(ctx, std.ID)
	require.NoError(t, err)
	assert.Equal(t, std, deletedStd)

	// the teacher becomes deletable once every referencing course is gone
	_, err = svc.Courses.Delete(ctx, crs1.ID)
	require.NoError(t, err)
	_, err = svc.Teachers.Delete(ctx, tch.ID)
	assertConflict(t, err, "cannot delete teacher 1: it has 1 dependent courses")
	_, err = svc.Courses.Delete(ctx, crs2.ID)
	require.NoError(t, err)

	deletedTch, err := svc.Teachers.Delete(ctx, tch.ID)
	require.NoError(t, err)
	assert.Equal(t, tch, deletedTch)

	_, err = svc.Teachers.Delete(ctx, tch.ID)
	assert.True(t, core.IsNotFound(err))
}
