package models

// RegistrySnapshot is the full persisted state of the case registry: every
// case in insertion order plus the next identifier to assign.
type RegistrySnapshot struct {
	Cases      []Violation
	NextCaseID int
}
