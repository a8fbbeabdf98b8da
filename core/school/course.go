package school

import (
	"context"

	"github.com/pkg/errors"
)

type CourseRepository struct {
	repository
}

// List returns all courses ordered by id.
func (r *CourseRepository) List(ctx context.Context) ([]Course, error) {
	return listEntities[Course](ctx, r.store, KindCourse)
}

func (r *CourseRepository) Get(ctx context.Context, id int) (Course, error) {
	return getEntity[Course](ctx, r.store, KindCourse, id)
}

func (r *CourseRepository) Create(ctx context.Context, nc NewCourse) (Course, error) {
	nc.clean()
	if err := r.validator.Check(nc, "cannot create course: missing or invalid fields"); err != nil {
		return Course{}, err
	}

	var crs Course
	err := r.store.Tx(ctx, func(tx Store) error {
		if err := NewGuard(tx).CheckReferenceExists(ctx, FieldTeacherID, KindTeacher, nc.TeacherID); err != nil {
			return err
		}
		id, err := NewCounterAllocator(tx).Next(ctx, KindCourse)
		if err != nil {
			return err
		}
		now := nowFunc()
		crs = Course{
			ID:        id,
			Code:      nc.Code,
			Name:      nc.Name,
			TeacherID: nc.TeacherID,
			Semester:  nc.Semester,
			Room:      nc.Room,
			Schedule:  nc.Schedule,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return insertEntity(ctx, tx, KindCourse, id, crs)
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (r *CourseRepository) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	uc.clean()
	if uc.IsEmpty() {
		return Course{}, errEmptyUpdate(KindCourse)
	}
	if err := r.validator.Check(uc, "cannot update course: invalid fields"); err != nil {
		return Course{}, err
	}

	var crs Course
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		if crs, err = getEntity[Course](ctx, tx, KindCourse, id); err != nil {
			return err
		}
		if uc.TeacherID != nil {
			if err = NewGuard(tx).CheckReferenceExists(ctx, FieldTeacherID, KindTeacher, *uc.TeacherID); err != nil {
				return err
			}
		}
		uc.apply(&crs)
		crs.UpdatedAt = nowFunc()
		return replaceEntity(ctx, tx, KindCourse, id, crs)
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	return crs, nil
}

// Delete deletes the course unless a test references it, and returns its last state.
func (r *CourseRepository) Delete(ctx context.Context, id int) (Course, error) {
	var crs Course
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		crs, err = deleteEntity[Course](ctx, tx, KindCourse, id)
		return err
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "deleting course")
	}
	return crs, nil
}
