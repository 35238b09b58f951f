package models

import "fmt"

// Student identifies the learner a misconduct case is recorded against.
type Student struct {
	EnrollmentNumber string `json:"enrollment_number" yaml:"enrollment_number" validate:"required,len=8,numeric"`
	FullName         string `json:"full_name" yaml:"full_name" validate:"required,min=6,max=100"`
	Email            string `json:"email" yaml:"email" validate:"required,email,max=254"`
	Department       string `json:"department" yaml:"department" validate:"required,min=2,max=100"`
}

// NewStudent builds a student record from already validated values.
func NewStudent(enrollmentNumber, fullName, email, department string) Student {
	return Student{
		EnrollmentNumber: enrollmentNumber,
		FullName:         fullName,
		Email:            email,
		Department:       department,
	}
}

// DisplayInfo renders the student as "Name (ID) - Department".
func (s Student) DisplayInfo() string {
	return fmt.Sprintf("%s (%s) - %s", s.FullName, s.EnrollmentNumber, s.Department)
}

func (s Student) String() string {
	return fmt.Sprintf("Student[ID: %s, Name: %s, Email: %s, Department: %s]",
		s.EnrollmentNumber, s.FullName, s.Email, s.Department)
}
