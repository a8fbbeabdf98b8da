package school

import (
	"context"

	"github.com/pkg/errors"
)

type StudentRepository struct {
	repository
}

// List returns all students ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]Student, error) {
	return listEntities[Student](ctx, r.store, KindStudent)
}

func (r *StudentRepository) Get(ctx context.Context, id int) (Student, error) {
	return getEntity[Student](ctx, r.store, KindStudent, id)
}

func (r *StudentRepository) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.clean()
	if err := r.validator.Check(ns, "cannot create student: missing or invalid fields"); err != nil {
		return Student{}, err
	}

	var std Student
	err := r.store.Tx(ctx, func(tx Store) error {
		id, err := NewCounterAllocator(tx).Next(ctx, KindStudent)
		if err != nil {
			return err
		}
		now := nowFunc()
		std = Student{
			ID:            id,
			FirstName:     ns.FirstName,
			LastName:      ns.LastName,
			Grade:         *ns.Grade,
			StudentNumber: ns.StudentNumber,
			Homeroom:      ns.Homeroom,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return insertEntity(ctx, tx, KindStudent, id, std)
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (r *StudentRepository) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	us.clean()
	if us.IsEmpty() {
		return Student{}, errEmptyUpdate(KindStudent)
	}
	if err := r.validator.Check(us, "cannot update student: invalid fields"); err != nil {
		return Student{}, err
	}

	var std Student
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		if std, err = getEntity[Student](ctx, tx, KindStudent, id); err != nil {
			return err
		}
		us.apply(&std)
		std.UpdatedAt = nowFunc()
		return replaceEntity(ctx, tx, KindStudent, id, std)
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	return std, nil
}

// Delete deletes the student unless a test references it, and returns its last state.
func (r *StudentRepository) Delete(ctx context.Context, id int) (Student, error) {
	var std Student
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		std, err = deleteEntity[Student](ctx, tx, KindStudent, id)
		return err
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "deleting student")
	}
	return std, nil
}
