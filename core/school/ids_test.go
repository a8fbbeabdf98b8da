package school_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/dummy"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

func TestCounterAllocator_Next(t *testing.T) {
	ctx := context.Background()
	alloc := school.NewCounterAllocator(dummydb.Open())

	for want := 1; want <= 3; want++ {
		id, err := alloc.Next(ctx, school.KindTeacher)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// counters are per kind
	id, err := alloc.Next(ctx, school.KindCourse)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestCreate_concurrentIDsAreUnique(t *testing.T) {
	svc := testutil.NewService(t)

	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			std, err := svc.Students.Create(context.Background(), school.NewStudent{
				FirstName: "Ada", LastName: "Lovelace", Grade: testutil.IntPtr(12), StudentNumber: "S-1",
			})
			if assert.NoError(t, err) {
				ids <- std.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Positive(t, id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	students, err := svc.Students.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, n)
}

func TestCreate_idsAreNotReused(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	tch1 := testutil.CreateTeacher(t, svc, "Alan", "Turing", "alan@school.test")
	tch2 := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	_, err := svc.Teachers.Delete(ctx, tch2.ID)
	require.NoError(t, err)

	tch3 := testutil.CreateTeacher(t, svc, "Edsger", "Dijkstra", "edsger@school.test")
	assert.Equal(t, 1, tch1.ID)
	assert.Equal(t, 2, tch2.ID)
	assert.Equal(t, 3, tch3.ID)
}

func TestCreate_failedCreateConsumesNoRecord(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewService(t)

	_, err := svc.Courses.Create(ctx, school.NewCourse{
		Code: "ICS4U", Name: "Computer Science", TeacherID: 42, Semester: "S1", Room: "101",
	})
	require.Error(t, err)

	courses, err := svc.Courses.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}
