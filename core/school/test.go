package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

type TestRepository struct {
	repository
}

// List returns all tests ordered by id.
func (r *TestRepository) List(ctx context.Context) ([]Test, error) {
	return listEntities[Test](ctx, r.store, KindTest)
}

func (r *TestRepository) Get(ctx context.Context, id int) (Test, error) {
	return getEntity[Test](ctx, r.store, KindTest, id)
}

// ListByStudent returns the tests of an existing student ordered by id.
func (r *TestRepository) ListByStudent(ctx context.Context, studentID int) ([]Test, error) {
	return r.listByParent(ctx, KindStudent, FieldStudentID, studentID)
}

// ListByCourse returns the tests of an existing course ordered by id.
func (r *TestRepository) ListByCourse(ctx context.Context, courseID int) ([]Test, error) {
	return r.listByParent(ctx, KindCourse, FieldCourseID, courseID)
}

func (r *TestRepository) listByParent(ctx context.Context, kind Kind, field string, id int) ([]Test, error) {
	if err := mustExist(ctx, r.store, kind, id); err != nil {
		return nil, err
	}
	return findEntities[Test](ctx, r.store, KindTest, field, id)
}

// checkRefs checks studentId before courseId and reports the first failure only.
func (r *TestRepository) checkRefs(ctx context.Context, tx Store, studentID, courseID *int) error {
	guard := NewGuard(tx)
	if studentID != nil {
		if err := guard.CheckReferenceExists(ctx, FieldStudentID, KindStudent, *studentID); err != nil {
			return err
		}
	}
	if courseID != nil {
		if err := guard.CheckReferenceExists(ctx, FieldCourseID, KindCourse, *courseID); err != nil {
			return err
		}
	}
	return nil
}

func (r *TestRepository) Create(ctx context.Context, nt NewTest) (Test, error) {
	nt.clean()
	if err := r.validator.Check(nt, "cannot create test: missing or invalid fields"); err != nil {
		return Test{}, err
	}

	var tst Test
	err := r.store.Tx(ctx, func(tx Store) error {
		if err := r.checkRefs(ctx, tx, &nt.StudentID, &nt.CourseID); err != nil {
			return err
		}
		id, err := NewCounterAllocator(tx).Next(ctx, KindTest)
		if err != nil {
			return err
		}
		now := nowFunc()
		tst = Test{
			ID:        id,
			StudentID: nt.StudentID,
			CourseID:  nt.CourseID,
			TestName:  nt.TestName,
			Date:      nt.Date,
			Mark:      *nt.Mark,
			OutOf:     *nt.OutOf,
			Weight:    *nt.Weight,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return insertEntity(ctx, tx, KindTest, id, tst)
	})
	if err != nil {
		return Test{}, errors.Wrap(err, "creating test")
	}
	return tst, nil
}

func (r *TestRepository) Update(ctx context.Context, id int, ut UpdateTest) (Test, error) {
	ut.clean()
	if ut.IsEmpty() {
		return Test{}, errEmptyUpdate(KindTest)
	}
	if err := r.validator.Check(ut, "cannot update test: invalid fields"); err != nil {
		return Test{}, err
	}

	var tst Test
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		if tst, err = getEntity[Test](ctx, tx, KindTest, id); err != nil {
			return err
		}
		if err = r.checkRefs(ctx, tx, ut.StudentID, ut.CourseID); err != nil {
			return err
		}
		ut.apply(&tst)
		tst.UpdatedAt = nowFunc()
		return replaceEntity(ctx, tx, KindTest, id, tst)
	})
	if err != nil {
		return Test{}, errors.Wrap(err, "updating test")
	}
	return tst, nil
}

// Delete deletes the test unconditionally and returns its last state.
func (r *TestRepository) Delete(ctx context.Context, id int) (Test, error) {
	var tst Test
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		tst, err = deleteEntity[Test](ctx, tx, KindTest, id)
		return err
	})
	if err != nil {
		return Test{}, errors.Wrap(err, "deleting test")
	}
	return tst, nil
}

// mustExist returns a *core.NotFoundError when no record of kind exists at id.
func mustExist(ctx context.Context, st Store, kind Kind, id int) error {
	exists, err := st.Exists(ctx, kind, id)
	if err != nil {
		return errors.Wrapf(err, "checking %s %d exists", kind, id)
	}
	if !exists {
		return core.NewNotFoundError(string(kind))
	}
	return nil
}
