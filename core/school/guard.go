package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

type dependent struct {
	kind  Kind
	field string
	label string
}

// dependents lists, per kind, the references that make a record of that kind non-deletable.
var dependents = map[Kind][]dependent{
	KindTeacher: {{kind: KindCourse, field: FieldTeacherID, label: "courses"}},
	KindCourse:  {{kind: KindTest, field: FieldCourseID, label: "tests"}},
	KindStudent: {{kind: KindTest, field: FieldStudentID, label: "tests"}},
}

// Guard enforces referential integrity over a Store that has no foreign keys of its own.
type Guard struct {
	store Store
}

func NewGuard(st Store) Guard {
	return Guard{store: st}
}

// CheckReferenceExists returns a *core.ReferenceError naming `field` when no record of kind exists at id.
func (g Guard) CheckReferenceExists(ctx context.Context, field string, kind Kind, id int) error {
	if id <= 0 {
		return core.NewReferenceError(field, string(kind), id)
	}
	exists, err := g.store.Exists(ctx, kind, id)
	if err != nil {
		return errors.Wrapf(err, "checking %s %d exists", kind, id)
	}
	if !exists {
		return core.NewReferenceError(field, string(kind), id)
	}
	return nil
}

// CheckNoDependents returns a *core.ConflictError when any record references the record of kind at id.
func (g Guard) CheckNoDependents(ctx context.Context, kind Kind, id int) error {
	for _, dep := range dependents[kind] {
		n, err := g.store.CountByRef(ctx, dep.kind, dep.field, id)
		if err != nil {
			return errors.Wrapf(err, "counting %s dependent %s", kind, dep.label)
		}
		if n > 0 {
			return core.NewConflictError("cannot delete %s %d: it has %d dependent %s", kind, id, n, dep.label)
		}
	}
	return nil
}
