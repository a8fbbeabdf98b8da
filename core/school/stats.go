package school

import "context"

// Summary aggregates a set of tests. Average is nil when there are no tests.
type Summary struct {
	TestCount int      `json:"testCount"`
	Average   *float64 `json:"average"`
}

type StudentAverage struct {
	StudentID int `json:"studentId"`
	Summary
}

type CourseAverage struct {
	CourseID int `json:"courseId"`
	Summary
}

type Stats struct {
	tests *TestRepository
}

func (s *Stats) StudentAverage(ctx context.Context, id int) (StudentAverage, error) {
	tests, err := s.tests.ListByStudent(ctx, id)
	if err != nil {
		return StudentAverage{}, err
	}
	return StudentAverage{StudentID: id, Summary: Summarize(tests)}, nil
}

func (s *Stats) CourseAverage(ctx context.Context, id int) (CourseAverage, error) {
	tests, err := s.tests.ListByCourse(ctx, id)
	if err != nil {
		return CourseAverage{}, err
	}
	return CourseAverage{CourseID: id, Summary: Summarize(tests)}, nil
}

// Summarize returns the unweighted mean of the tests' percentages.
// Test.Weight is stored but not applied here.
func Summarize(tests []Test) Summary {
	if len(tests) == 0 {
		return Summary{}
	}
	var total float64
	for _, tst := range tests {
		total += tst.Percentage()
	}
	avg := total / float64(len(tests))
	return Summary{TestCount: len(tests), Average: &avg}
}
