package testutil

import (
	"context"
	"testing"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/dummy"
)

// NewService returns a school.Service over a fresh in-memory store.
func NewService(t *testing.T) *school.Service {
	t.Helper()
	return school.NewService(dummydb.Open(), core.NewValidator())
}

func IntPtr(i int) *int           { return &i }
func FloatPtr(f float64) *float64 { return &f }
func StringPtr(s string) *string  { return &s }

func CreateTeacher(t *testing.T, svc *school.Service, firstName, lastName, email string) school.Teacher {
	t.Helper()
	tch, err := svc.Teachers.Create(context.Background(), school.NewTeacher{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Department: "Computer Science",
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}

func CreateCourse(t *testing.T, svc *school.Service, code string, teacherID int) school.Course {
	t.Helper()
	crs, err := svc.Courses.Create(context.Background(), school.NewCourse{
		Code:      code,
		Name:      "Course " + code,
		TeacherID: teacherID,
		Semester:  "S1",
		Room:      "101",
		Schedule:  "P1",
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateStudent(t *testing.T, svc *school.Service, firstName, lastName, number string) school.Student {
	t.Helper()
	std, err := svc.Students.Create(context.Background(), school.NewStudent{
		FirstName:     firstName,
		LastName:      lastName,
		Grade:         IntPtr(12),
		StudentNumber: number,
		Homeroom:      "12A",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateTest(t *testing.T, svc *school.Service, studentID, courseID int, mark, outOf float64) school.Test {
	t.Helper()
	tst, err := svc.Tests.Create(context.Background(), school.NewTest{
		StudentID: studentID,
		CourseID:  courseID,
		TestName:  "Unit Test",
		Date:      "2025-10-01",
		Mark:      FloatPtr(mark),
		OutOf:     FloatPtr(outOf),
		Weight:    FloatPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateTest() failed: %v", err)
	}
	return tst
}
