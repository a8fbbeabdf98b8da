package school

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

// Relation is a reference that can be expanded into the referenced entity on read.
type Relation string

const (
	RelationTeacher Relation = "teacher"
	RelationStudent Relation = "student"
	RelationCourse  Relation = "course"
)

var (
	CourseRelations = []Relation{RelationTeacher}
	TestRelations   = []Relation{RelationStudent, RelationCourse}

	allRelations = []Relation{RelationTeacher, RelationStudent, RelationCourse}
)

// Relations is the set of relations a client asked to expand.
type Relations map[Relation]bool

func (rels Relations) Has(rel Relation) bool { return rels[rel] }
func (rels Relations) IsEmpty() bool         { return len(rels) == 0 }

// ParseRelations parses a comma separated list of relation tokens.
// Unknown tokens, and tokens outside `allowed`, are rejected with a *core.ValidationError.
func ParseRelations(raw string, allowed ...Relation) (Relations, error) {
	rels := make(Relations)
	for _, tok := range strings.Split(raw, ",") {
		tok = core.CleanString(tok, true /* lower */)
		if tok == "" {
			continue
		}
		rel := Relation(tok)
		if !containsRelation(allRelations, rel) {
			return nil, errInvalidRelation(fmt.Sprintf("unknown relation %q", tok))
		}
		if !containsRelation(allowed, rel) {
			return nil, errInvalidRelation(fmt.Sprintf("relation %q cannot be populated here", tok))
		}
		rels[rel] = true
	}
	return rels, nil
}

func errInvalidRelation(msg string) error {
	return core.NewValidationError(errors.New("invalid populate parameter"), core.FieldError{Field: "populate", Error: msg})
}

func containsRelation(rels []Relation, rel Relation) bool {
	for _, r := range rels {
		if r == rel {
			return true
		}
	}
	return false
}

// ExpandedCourse is a Course whose teacherId holds either the bare id or the expanded *Teacher (null if dangling).
type ExpandedCourse struct {
	Course
	TeacherID interface{} `json:"teacherId"`
}

// ExpandedTest is a Test whose studentId and courseId hold either the bare id or the expanded entity.
type ExpandedTest struct {
	Test
	StudentID interface{} `json:"studentId"`
	CourseID  interface{} `json:"courseId"`
}

// Expander resolves references into embedded entities.
// Lookups are cached per call so that shared references are fetched once.
type Expander struct {
	store Store
}

func (e *Expander) Courses(ctx context.Context, courses []Course, rels Relations) ([]ExpandedCourse, error) {
	teachers := make(map[int]*Teacher)
	expanded := make([]ExpandedCourse, 0, len(courses))
	for _, crs := range courses {
		ec := ExpandedCourse{Course: crs, TeacherID: crs.TeacherID}
		if rels.Has(RelationTeacher) {
			tch, err := lookup(ctx, e.store, KindTeacher, crs.TeacherID, teachers)
			if err != nil {
				return nil, err
			}
			ec.TeacherID = tch
		}
		expanded = append(expanded, ec)
	}
	return expanded, nil
}

func (e *Expander) Course(ctx context.Context, crs Course, rels Relations) (ExpandedCourse, error) {
	expanded, err := e.Courses(ctx, []Course{crs}, rels)
	if err != nil {
		return ExpandedCourse{}, err
	}
	return expanded[0], nil
}

func (e *Expander) Tests(ctx context.Context, tests []Test, rels Relations) ([]ExpandedTest, error) {
	students := make(map[int]*Student)
	courses := make(map[int]*Course)
	expanded := make([]ExpandedTest, 0, len(tests))
	for _, tst := range tests {
		et := ExpandedTest{Test: tst, StudentID: tst.StudentID, CourseID: tst.CourseID}
		if rels.Has(RelationStudent) {
			std, err := lookup(ctx, e.store, KindStudent, tst.StudentID, students)
			if err != nil {
				return nil, err
			}
			et.StudentID = std
		}
		if rels.Has(RelationCourse) {
			crs, err := lookup(ctx, e.store, KindCourse, tst.CourseID, courses)
			if err != nil {
				return nil, err
			}
			et.CourseID = crs
		}
		expanded = append(expanded, et)
	}
	return expanded, nil
}

func (e *Expander) Test(ctx context.Context, tst Test, rels Relations) (ExpandedTest, error) {
	expanded, err := e.Tests(ctx, []Test{tst}, rels)
	if err != nil {
		return ExpandedTest{}, err
	}
	return expanded[0], nil
}

// lookup returns nil, without error, for a dangling reference.
func lookup[T any](ctx context.Context, st Store, kind Kind, id int, cache map[int]*T) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := getEntity[T](ctx, st, kind, id)
	if err != nil {
		if core.IsNotFound(err) {
			cache[id] = nil
			return nil, nil
		}
		return nil, errors.Wrapf(err, "expanding %s", kind)
	}
	cache[id] = &v
	return &v, nil
}
