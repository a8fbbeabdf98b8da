package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

// fixtures is the content of a seed file.
// References (course teacherId, test studentId and courseId) are 1-based positions in the file's own lists.
type fixtures struct {
	Teachers []school.NewTeacher `yaml:"teachers"`
	Courses  []school.NewCourse  `yaml:"courses"`
	Students []school.NewStudent `yaml:"students"`
	Tests    []school.NewTest    `yaml:"tests"`
}

func loadFixtures(path string) (fixtures, error) {
	var fx fixtures
	data, err := os.ReadFile(path)
	if err != nil {
		return fx, errors.Wrap(err, "reading fixtures")
	}
	if err = yaml.Unmarshal(data, &fx); err != nil {
		return fx, errors.Wrap(err, "decoding fixtures")
	}
	return fx, nil
}

func resolveRef(ids []int, pos int, what string) (int, error) {
	if pos < 1 || pos > len(ids) {
		return 0, errors.Errorf("unknown %s %d", what, pos)
	}
	return ids[pos-1], nil
}

func (cli *commandLine) seed(path string, force bool) error {
	fx, err := loadFixtures(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	empty, err := cli.svc.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty && !force && !confirmFunc("The store already has records. Seed anyway?") {
		return errAborted
	}

	teacherIDs := make([]int, 0, len(fx.Teachers))
	for i, nt := range fx.Teachers {
		tch, err := cli.svc.Teachers.Create(ctx, nt)
		if err != nil {
			return errors.Wrapf(err, "teacher %d", i+1)
		}
		teacherIDs = append(teacherIDs, tch.ID)
	}

	courseIDs := make([]int, 0, len(fx.Courses))
	for i, nc := range fx.Courses {
		if nc.TeacherID, err = resolveRef(teacherIDs, nc.TeacherID, "teacher"); err != nil {
			return errors.Wrapf(err, "course %d", i+1)
		}
		crs, err := cli.svc.Courses.Create(ctx, nc)
		if err != nil {
			return errors.Wrapf(err, "course %d", i+1)
		}
		courseIDs = append(courseIDs, crs.ID)
	}

	studentIDs := make([]int, 0, len(fx.Students))
	for i, ns := range fx.Students {
		std, err := cli.svc.Students.Create(ctx, ns)
		if err != nil {
			return errors.Wrapf(err, "student %d", i+1)
		}
		studentIDs = append(studentIDs, std.ID)
	}

	for i, nt := range fx.Tests {
		if nt.StudentID, err = resolveRef(studentIDs, nt.StudentID, "student"); err != nil {
			return errors.Wrapf(err, "test %d", i+1)
		}
		if nt.CourseID, err = resolveRef(courseIDs, nt.CourseID, "course"); err != nil {
			return errors.Wrapf(err, "test %d", i+1)
		}
		if _, err = cli.svc.Tests.Create(ctx, nt); err != nil {
			return errors.Wrapf(err, "test %d", i+1)
		}
	}

	fmt.Printf("seeded %d teachers, %d courses, %d students and %d tests\n",
		len(fx.Teachers), len(fx.Courses), len(fx.Students), len(fx.Tests))
	return nil
}
