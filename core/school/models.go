package school

import (
	"time"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

// Kind is an entity kind; every kind has its own collection and id counter.
type Kind string

const (
	KindTeacher Kind = "teacher"
	KindCourse  Kind = "course"
	KindStudent Kind = "student"
	KindTest    Kind = "test"
)

var Kinds = []Kind{KindTeacher, KindCourse, KindStudent, KindTest}

// Reference fields (foreign keys), by JSON name.
const (
	FieldTeacherID = "teacherId"
	FieldStudentID = "studentId"
	FieldCourseID  = "courseId"
)

var nowFunc = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) } // mockable

type Teacher struct {
	ID         int       `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
	UpdatedAt  time.Time `json:"updatedAt"` // UTC
}

func (Teacher) refs() map[string]int { return nil }

type Course struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	TeacherID int       `json:"teacherId"`
	Semester  string    `json:"semester"`
	Room      string    `json:"room"`
	Schedule  string    `json:"schedule"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

func (c Course) refs() map[string]int {
	return map[string]int{FieldTeacherID: c.TeacherID}
}

type Student struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Grade         int       `json:"grade"`
	StudentNumber string    `json:"studentNumber"`
	Homeroom      string    `json:"homeroom"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
	UpdatedAt     time.Time `json:"updatedAt"` // UTC
}

func (Student) refs() map[string]int { return nil }

type Test struct {
	ID        int       `json:"id"`
	StudentID int       `json:"studentId"`
	CourseID  int       `json:"courseId"`
	TestName  string    `json:"testName"`
	Date      string    `json:"date"`
	Mark      float64   `json:"mark"`
	OutOf     float64   `json:"outOf"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

func (t Test) refs() map[string]int {
	return map[string]int{FieldStudentID: t.StudentID, FieldCourseID: t.CourseID}
}

// Percentage returns the mark as a percentage of OutOf. Weight is not applied.
func (t Test) Percentage() float64 {
	return 100 * t.Mark / t.OutOf
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	FirstName  string `json:"firstName" yaml:"firstName" validate:"required"`
	LastName   string `json:"lastName" yaml:"lastName" validate:"required"`
	Email      string `json:"email" yaml:"email" validate:"required"`
	Department string `json:"department" yaml:"department" validate:"required"`
}

func (nt *NewTeacher) clean() {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Department = core.CleanString(nt.Department)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
// nil fields are left untouched.
type UpdateTeacher struct {
	FirstName  *string `json:"firstName" validate:"omitempty,notblank"`
	LastName   *string `json:"lastName" validate:"omitempty,notblank"`
	Email      *string `json:"email" validate:"omitempty,notblank"`
	Department *string `json:"department" validate:"omitempty,notblank"`
}

func (ut *UpdateTeacher) clean() {
	core.CleanStringPtr(ut.FirstName)
	core.CleanStringPtr(ut.LastName)
	core.CleanStringPtr(ut.Email, true /* lower */)
	core.CleanStringPtr(ut.Department)
}

func (ut UpdateTeacher) IsEmpty() bool {
	return ut.FirstName == nil && ut.LastName == nil && ut.Email == nil && ut.Department == nil
}

func (ut UpdateTeacher) apply(tch *Teacher) {
	if ut.FirstName != nil {
		tch.FirstName = *ut.FirstName
	}
	if ut.LastName != nil {
		tch.LastName = *ut.LastName
	}
	if ut.Email != nil {
		tch.Email = *ut.Email
	}
	if ut.Department != nil {
		tch.Department = *ut.Department
	}
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Code      string `json:"code" yaml:"code" validate:"required"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	TeacherID int    `json:"teacherId" yaml:"teacherId" validate:"required"`
	Semester  string `json:"semester" yaml:"semester" validate:"required"`
	Room      string `json:"room" yaml:"room" validate:"required"`
	Schedule  string `json:"schedule" yaml:"schedule"`
}

func (nc *NewCourse) clean() {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Semester = core.CleanString(nc.Semester)
	nc.Room = core.CleanString(nc.Room)
	nc.Schedule = core.CleanString(nc.Schedule)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Code      *string `json:"code" validate:"omitempty,notblank"`
	Name      *string `json:"name" validate:"omitempty,notblank"`
	TeacherID *int    `json:"teacherId"`
	Semester  *string `json:"semester" validate:"omitempty,notblank"`
	Room      *string `json:"room" validate:"omitempty,notblank"`
	Schedule  *string `json:"schedule"`
}

func (uc *UpdateCourse) clean() {
	core.CleanStringPtr(uc.Code)
	core.CleanStringPtr(uc.Name)
	core.CleanStringPtr(uc.Semester)
	core.CleanStringPtr(uc.Room)
	core.CleanStringPtr(uc.Schedule)
}

func (uc UpdateCourse) IsEmpty() bool {
	return uc.Code == nil && uc.Name == nil && uc.TeacherID == nil &&
		uc.Semester == nil && uc.Room == nil && uc.Schedule == nil
}

func (uc UpdateCourse) apply(crs *Course) {
	if uc.Code != nil {
		crs.Code = *uc.Code
	}
	if uc.Name != nil {
		crs.Name = *uc.Name
	}
	if uc.TeacherID != nil {
		crs.TeacherID = *uc.TeacherID
	}
	if uc.Semester != nil {
		crs.Semester = *uc.Semester
	}
	if uc.Room != nil {
		crs.Room = *uc.Room
	}
	if uc.Schedule != nil {
		crs.Schedule = *uc.Schedule
	}
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName     string `json:"firstName" yaml:"firstName" validate:"required"`
	LastName      string `json:"lastName" yaml:"lastName" validate:"required"`
	Grade         *int   `json:"grade" yaml:"grade" validate:"required"`
	StudentNumber string `json:"studentNumber" yaml:"studentNumber" validate:"required"`
	Homeroom      string `json:"homeroom" yaml:"homeroom"`
}

func (ns *NewStudent) clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	ns.Homeroom = core.CleanString(ns.Homeroom)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	FirstName     *string `json:"firstName" validate:"omitempty,notblank"`
	LastName      *string `json:"lastName" validate:"omitempty,notblank"`
	Grade         *int    `json:"grade"`
	StudentNumber *string `json:"studentNumber" validate:"omitempty,notblank"`
	Homeroom      *string `json:"homeroom"`
}

func (us *UpdateStudent) clean() {
	core.CleanStringPtr(us.FirstName)
	core.CleanStringPtr(us.LastName)
	core.CleanStringPtr(us.StudentNumber)
	core.CleanStringPtr(us.Homeroom)
}

func (us UpdateStudent) IsEmpty() bool {
	return us.FirstName == nil && us.LastName == nil && us.Grade == nil &&
		us.StudentNumber == nil && us.Homeroom == nil
}

func (us UpdateStudent) apply(std *Student) {
	if us.FirstName != nil {
		std.FirstName = *us.FirstName
	}
	if us.LastName != nil {
		std.LastName = *us.LastName
	}
	if us.Grade != nil {
		std.Grade = *us.Grade
	}
	if us.StudentNumber != nil {
		std.StudentNumber = *us.StudentNumber
	}
	if us.Homeroom != nil {
		std.Homeroom = *us.Homeroom
	}
}

// NewTest contains information needed to record a new Test.
type NewTest struct {
	StudentID int      `json:"studentId" yaml:"studentId" validate:"required"`
	CourseID  int      `json:"courseId" yaml:"courseId" validate:"required"`
	TestName  string   `json:"testName" yaml:"testName" validate:"required"`
	Date      string   `json:"date" yaml:"date" validate:"required"`
	Mark      *float64 `json:"mark" yaml:"mark" validate:"required"`
	OutOf     *float64 `json:"outOf" yaml:"outOf" validate:"required,gt=0"`
	Weight    *float64 `json:"weight" yaml:"weight" validate:"required"`
}

func (nt *NewTest) clean() {
	nt.TestName = core.CleanString(nt.TestName)
	nt.Date = core.CleanString(nt.Date)
}

// UpdateTest defines what information may be provided to modify an existing Test.
type UpdateTest struct {
	StudentID *int     `json:"studentId"`
	CourseID  *int     `json:"courseId"`
	TestName  *string  `json:"testName" validate:"omitempty,notblank"`
	Date      *string  `json:"date" validate:"omitempty,notblank"`
	Mark      *float64 `json:"mark"`
	OutOf     *float64 `json:"outOf" validate:"omitempty,gt=0"`
	Weight    *float64 `json:"weight"`
}

func (ut *UpdateTest) clean() {
	core.CleanStringPtr(ut.TestName)
	core.CleanStringPtr(ut.Date)
}

func (ut UpdateTest) IsEmpty() bool {
	return ut.StudentID == nil && ut.CourseID == nil && ut.TestName == nil && ut.Date == nil &&
		ut.Mark == nil && ut.OutOf == nil && ut.Weight == nil
}

func (ut UpdateTest) apply(tst *Test) {
	if ut.StudentID != nil {
		tst.StudentID = *ut.StudentID
	}
	if ut.CourseID != nil {
		tst.CourseID = *ut.CourseID
	}
	if ut.TestName != nil {
		tst.TestName = *ut.TestName
	}
	if ut.Date != nil {
		tst.Date = *ut.Date
	}
	if ut.Mark != nil {
		tst.Mark = *ut.Mark
	}
	if ut.OutOf != nil {
		tst.OutOf = *ut.OutOf
	}
	if ut.Weight != nil {
		tst.Weight = *ut.Weight
	}
}
