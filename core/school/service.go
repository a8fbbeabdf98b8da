package school

import (
	"context"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

// Service groups the repositories and read-side components of the school records.
// All of them share one Store; none holds entity state across calls.
type Service struct {
	Teachers *TeacherRepository
	Courses  *CourseRepository
	Students *StudentRepository
	Tests    *TestRepository
	Expander *Expander
	Stats    *Stats

	store Store
}

func NewService(store Store, validator *core.Validator) *Service {
	repo := repository{store: store, validator: validator}
	tests := &TestRepository{repo}
	return &Service{
		Teachers: &TeacherRepository{repo},
		Courses:  &CourseRepository{repo},
		Students: &StudentRepository{repo},
		Tests:    tests,
		Expander: &Expander{store: store},
		Stats:    &Stats{tests: tests},
		store:    store,
	}
}

// Ping checks that the underlying store is reachable.
func (svc *Service) Ping(ctx context.Context) error {
	return svc.store.Ping(ctx)
}

// IsEmpty reports whether no record of any kind exists.
func (svc *Service) IsEmpty(ctx context.Context) (bool, error) {
	for _, kind := range Kinds {
		docs, err := svc.store.List(ctx, kind)
		if err != nil {
			return false, err
		}
		if len(docs) > 0 {
			return false, nil
		}
	}
	return true, nil
}
