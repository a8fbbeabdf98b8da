// Package storetest checks that a school.Store implementation honours the Store contract.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/tests"
)

// Run runs the contract tests. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) school.Store) {
	t.Run("NextID", func(t *testing.T) { testNextID(t, newStore(t)) })
	t.Run("Documents", func(t *testing.T) { testDocuments(t, newStore(t)) })
	t.Run("Refs", func(t *testing.T) { testRefs(t, newStore(t)) })
	t.Run("ConcurrentReplace", func(t *testing.T) { testConcurrentReplace(t, newStore(t)) })
	t.Run("ReplaceRacingDelete", func(t *testing.T) { testReplaceRacingDelete(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("Service", func(t *testing.T) { testService(t, newStore(t)) })
}

func doc(id int, body string, refs map[string]int) school.Document {
	return school.Document{ID: id, Refs: refs, Body: []byte(body)}
}

func ids(docs []school.Document) []int {
	out := make([]int, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func testNextID(t *testing.T, st school.Store) {
	ctx := context.Background()

	const n = 20
	got := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.Tx(ctx, func(tx school.Store) error {
				id, err := tx.NextID(ctx, school.KindStudent)
				if err == nil {
					got <- id
				}
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(got)

	seen := make(map[int]bool)
	for id := range got {
		seen[id] = true
	}
	for id := 1; id <= n; id++ {
		assert.True(t, seen[id], "id %d was not allocated", id)
	}

	id, err := st.NextID(ctx, school.KindTeacher)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func testDocuments(t *testing.T, st school.Store) {
	ctx := context.Background()

	for _, id := range []int{3, 1, 2} {
		require.NoError(t, st.Insert(ctx, school.KindTeacher, doc(id, `{"id":0}`, nil)))
	}
	require.NoError(t, st.Insert(ctx, school.KindStudent, doc(1, `{"student":true}`, nil)))

	docs, err := st.List(ctx, school.KindTeacher)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(docs))

	got, err := st.Get(ctx, school.KindStudent, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"student":true}`, string(got.Body))

	_, err = st.Get(ctx, school.KindStudent, 2)
	assert.Equal(t, school.ErrNoDocument, err)

	ok, err := st.Exists(ctx, school.KindTeacher, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = st.Exists(ctx, school.KindCourse, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Replace(ctx, school.KindTeacher, doc(2, `{"replaced":true}`, nil)))
	got, err = st.Get(ctx, school.KindTeacher, 2)
	require.NoError(t, err)
	assert.JSONEq(t, `{"replaced":true}`, string(got.Body))
	assert.Equal(t, school.ErrNoDocument, st.Replace(ctx, school.KindTeacher, doc(9, `{}`, nil)))

	require.NoError(t, st.Delete(ctx, school.KindTeacher, 2))
	docs, err = st.List(ctx, school.KindTeacher)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(docs))

	docs, err = st.List(ctx, school.KindTest)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func testRefs(t *testing.T, st school.Store) {
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, school.KindTest, doc(2, `{}`, map[string]int{school.FieldStudentID: 1, school.FieldCourseID: 7})))
	require.NoError(t, st.Insert(ctx, school.KindTest, doc(1, `{}`, map[string]int{school.FieldStudentID: 1, school.FieldCourseID: 8})))
	require.NoError(t, st.Insert(ctx, school.KindTest, doc(3, `{}`, map[string]int{school.FieldStudentID: 2, school.FieldCourseID: 7})))

	docs, err := st.FindByRef(ctx, school.KindTest, school.FieldStudentID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(docs))

	n, err := st.CountByRef(ctx, school.KindTest, school.FieldCourseID, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// replacing re-indexes the refs
	require.NoError(t, st.Replace(ctx, school.KindTest, doc(3, `{}`, map[string]int{school.FieldStudentID: 1, school.FieldCourseID: 8})))
	n, err = st.CountByRef(ctx, school.KindTest, school.FieldCourseID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	docs, err = st.FindByRef(ctx, school.KindTest, school.FieldStudentID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(docs))

	// deleting drops them
	require.NoError(t, st.Delete(ctx, school.KindTest, 1))
	n, err = st.CountByRef(ctx, school.KindTest, school.FieldCourseID, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err = st.FindByRef(ctx, school.KindTest, school.FieldStudentID, 99)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// teacherRefs returns the number of ref index entries per teacher in targets.
func teacherRefs(t *testing.T, st school.Store, targets int) map[int]int {
	t.Helper()
	counts := make(map[int]int)
	for target := 1; target <= targets; target++ {
		n, err := st.CountByRef(context.Background(), school.KindCourse, school.FieldTeacherID, target)
		require.NoError(t, err)
		if n > 0 {
			counts[target] = n
		}
	}
	return counts
}

func testConcurrentReplace(t *testing.T, st school.Store) {
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, school.KindCourse, doc(1, `{"teacherId":1}`, map[string]int{school.FieldTeacherID: 1})))

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		teacherID := i + 2
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := fmt.Sprintf(`{"teacherId":%d}`, teacherID)
			assert.NoError(t, st.Replace(ctx, school.KindCourse, doc(1, body, map[string]int{school.FieldTeacherID: teacherID})))
		}()
	}
	wg.Wait()

	got, err := st.Get(ctx, school.KindCourse, 1)
	require.NoError(t, err)
	var crs struct {
		TeacherID int `json:"teacherId"`
	}
	require.NoError(t, json.Unmarshal(got.Body, &crs))

	// exactly one index entry, pointing at the teacher of the surviving body
	assert.Equal(t, map[int]int{crs.TeacherID: 1}, teacherRefs(t, st, writers+1))
}

func testReplaceRacingDelete(t *testing.T, st school.Store) {
	ctx := context.Background()

	for round := 1; round <= 10; round++ {
		require.NoError(t, st.Insert(ctx, school.KindCourse, doc(round, `{}`, map[string]int{school.FieldTeacherID: 1})))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := st.Replace(ctx, school.KindCourse, doc(round, `{}`, map[string]int{school.FieldTeacherID: 2}))
			if err != nil {
				assert.Equal(t, school.ErrNoDocument, err)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, st.Delete(ctx, school.KindCourse, round))
		}()
		wg.Wait()

		// a replace landing after the delete recreates nothing, so no ref may outlive the course
		ok, err := st.Exists(ctx, school.KindCourse, round)
		require.NoError(t, err)
		if ok {
			require.NoError(t, st.Delete(ctx, school.KindCourse, round))
		}
		assert.Empty(t, teacherRefs(t, st, 2), "round %d", round)
	}
}

func testTxRollback(t *testing.T, st school.Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := st.Tx(ctx, func(tx school.Store) error {
		if err := tx.Insert(ctx, school.KindCourse, doc(1, `{}`, map[string]int{school.FieldTeacherID: 1})); err != nil {
			return err
		}
		return errBoom
	})
	assert.Equal(t, errBoom, err)

	ok, err := st.Exists(ctx, school.KindCourse, 1)
	require.NoError(t, err)
	if txSupported(st) {
		assert.False(t, ok, "insert of a failed Tx was kept")
		n, err := st.CountByRef(ctx, school.KindCourse, school.FieldTeacherID, 1)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

// txSupported reports whether st can roll back a failed Tx.
func txSupported(st school.Store) bool {
	nt, ok := st.(interface{ NonTransactional() bool })
	return !ok || !nt.NonTransactional()
}

func testService(t *testing.T, st school.Store) {
	ctx := context.Background()
	svc := school.NewService(st, core.NewValidator())

	tch := testutil.CreateTeacher(t, svc, "Grace", "Hopper", "grace@school.test")
	crs := testutil.CreateCourse(t, svc, "ICS4U", tch.ID)
	std := testutil.CreateStudent(t, svc, "Ada", "Lovelace", "S-100")
	testutil.CreateTest(t, svc, std.ID, crs.ID, 8, 10)
	testutil.CreateTest(t, svc, std.ID, crs.ID, 10, 10)

	got, err := svc.Courses.Get(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, got)

	_, err = svc.Teachers.Delete(ctx, tch.ID)
	assert.Error(t, err)

	avg, err := svc.Stats.CourseAverage(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, avg.TestCount)
	require.NotNil(t, avg.Average)
	assert.InDelta(t, 90.0, *avg.Average, 1e-9)

	require.NoError(t, svc.Ping(ctx))
}
