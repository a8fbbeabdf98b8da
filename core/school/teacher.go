package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

type repository struct {
	store     Store
	validator *core.Validator
}

func errEmptyUpdate(kind Kind) error {
	return core.NewValidationError(errors.Errorf("cannot update %s: no fields to update", kind))
}

type TeacherRepository struct {
	repository
}

// List returns all teachers ordered by id.
func (r *TeacherRepository) List(ctx context.Context) ([]Teacher, error) {
	return listEntities[Teacher](ctx, r.store, KindTeacher)
}

func (r *TeacherRepository) Get(ctx context.Context, id int) (Teacher, error) {
	return getEntity[Teacher](ctx, r.store, KindTeacher, id)
}

func (r *TeacherRepository) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	nt.clean()
	if err := r.validator.Check(nt, "cannot create teacher: missing or invalid fields"); err != nil {
		return Teacher{}, err
	}

	var tch Teacher
	err := r.store.Tx(ctx, func(tx Store) error {
		id, err := NewCounterAllocator(tx).Next(ctx, KindTeacher)
		if err != nil {
			return err
		}
		now := nowFunc()
		tch = Teacher{
			ID:         id,
			FirstName:  nt.FirstName,
			LastName:   nt.LastName,
			Email:      nt.Email,
			Department: nt.Department,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return insertEntity(ctx, tx, KindTeacher, id, tch)
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return tch, nil
}

func (r *TeacherRepository) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	ut.clean()
	if ut.IsEmpty() {
		return Teacher{}, errEmptyUpdate(KindTeacher)
	}
	if err := r.validator.Check(ut, "cannot update teacher: invalid fields"); err != nil {
		return Teacher{}, err
	}

	var tch Teacher
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		if tch, err = getEntity[Teacher](ctx, tx, KindTeacher, id); err != nil {
			return err
		}
		ut.apply(&tch)
		tch.UpdatedAt = nowFunc()
		return replaceEntity(ctx, tx, KindTeacher, id, tch)
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return tch, nil
}

// Delete deletes the teacher unless a course references it, and returns its last state.
func (r *TeacherRepository) Delete(ctx context.Context, id int) (Teacher, error) {
	var tch Teacher
	err := r.store.Tx(ctx, func(tx Store) error {
		var err error
		tch, err = deleteEntity[Teacher](ctx, tx, KindTeacher, id)
		return err
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "deleting teacher")
	}
	return tch, nil
}
