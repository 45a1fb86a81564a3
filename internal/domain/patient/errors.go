package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this ID already exists")
	ErrPatientIDMismatch    = errors.New("patient ID cannot be changed")
	ErrInvalidListField     = errors.New("list field must be one of allergies, medicalHistory, currentMedications")
	ErrListIndexOutOfRange  = errors.New("list index out of range")
)
