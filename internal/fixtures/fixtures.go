// Package fixtures holds the demo data the store starts with.
package fixtures

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type Set struct {
	Appointments  []*appointment.Appointment
	Patients      []*patient.Record
	Prescriptions []*prescription.Prescription
	Vitals        []*vitals.Reading
}

type Repos struct {
	Appointments  appointment.Repository
	Patients      patient.Repository
	Prescriptions prescription.Repository
	Vitals        vitals.Repository
}

// Summary counts the records each repository accepted.
type Summary struct {
	Appointments  int
	Patients      int
	Prescriptions int
	Vitals        int
}

type document struct {
	Appointments  []appointmentDoc  `yaml:"appointments"`
	Patients      []patientDoc      `yaml:"patients"`
	Prescriptions []prescriptionDoc `yaml:"prescriptions"`
	Vitals        []vitalsDoc       `yaml:"vitals"`
}

type appointmentDoc struct {
	ID          string `yaml:"id"`
	PatientName string `yaml:"patientName"`
	DoctorName  string `yaml:"doctorName"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Type        string `yaml:"type"`
	Status      string `yaml:"status"`
	Notes       string `yaml:"notes"`
}

type patientDoc struct {
	ID                 string                 `yaml:"id"`
	Name               string                 `yaml:"name"`
	Age                int                    `yaml:"age"`
	Gender             string                 `yaml:"gender"`
	BloodType          string                 `yaml:"bloodType"`
	Phone              string                 `yaml:"phone"`
	Email              string                 `yaml:"email"`
	Address            string                 `yaml:"address"`
	EmergencyContact   string                 `yaml:"emergencyContact"`
	Allergies          []string               `yaml:"allergies"`
	MedicalHistory     []string               `yaml:"medicalHistory"`
	CurrentMedications []string               `yaml:"currentMedications"`
	Diagnoses          []patient.Diagnosis    `yaml:"diagnoses"`
	Treatments         []patient.Treatment    `yaml:"treatments"`
	Immunizations      []patient.Immunization `yaml:"immunizations"`
	LabResults         []patient.LabResult    `yaml:"labResults"`
	LastVisit          string                 `yaml:"lastVisit"`
}

type prescriptionDoc struct {
	ID           string `yaml:"id"`
	PatientID    string `yaml:"patientId"`
	PatientName  string `yaml:"patientName"`
	Medication   string `yaml:"medication"`
	Dosage       string `yaml:"dosage"`
	Frequency    string `yaml:"frequency"`
	Duration     string `yaml:"duration"`
	Date         string `yaml:"date"`
	Status       string `yaml:"status"`
	Instructions string `yaml:"instructions"`
}

type vitalsDoc struct {
	ID          string    `yaml:"id"`
	PatientID   string    `yaml:"patientId"`
	PatientName string    `yaml:"patientName"`
	RecordedAt  time.Time `yaml:"recordedAt"`
	BP          string    `yaml:"bp"`
	HR          *int      `yaml:"hr"`
	Temp        *float64  `yaml:"temp"`
	SpO2        *int      `yaml:"spo2"`
	RecordedBy  string    `yaml:"recordedBy"`
}

// Load parses the embedded demo data.
func Load() (*Set, error) {
	return Parse(seedYAML)
}

func Parse(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	set := &Set{}
	for _, a := range doc.Appointments {
		status := appointment.AppointmentStatus(a.Status)
		if a.ID == "" || !status.IsValid() {
			return nil, fmt.Errorf("fixture appointment %q: invalid id or status %q", a.ID, a.Status)
		}
		set.Appointments = append(set.Appointments, &appointment.Appointment{
			ID:          a.ID,
			PatientName: a.PatientName,
			DoctorName:  a.DoctorName,
			Date:        a.Date,
			Time:        a.Time,
			Type:        a.Type,
			Status:      status,
			Notes:       a.Notes,
		})
	}

	for _, p := range doc.Patients {
		rec := patient.NewDraft()
		rec.ID = p.ID
		rec.Name = p.Name
		rec.Age = p.Age
		rec.Gender = p.Gender
		rec.BloodType = p.BloodType
		rec.Phone = p.Phone
		rec.Email = p.Email
		rec.Address = p.Address
		rec.EmergencyContact = p.EmergencyContact
		rec.LastVisit = p.LastVisit
		rec.Allergies = append(rec.Allergies, p.Allergies...)
		rec.MedicalHistory = append(rec.MedicalHistory, p.MedicalHistory...)
		rec.CurrentMedications = append(rec.CurrentMedications, p.CurrentMedications...)
		rec.Diagnoses = append(rec.Diagnoses, p.Diagnoses...)
		rec.Treatments = append(rec.Treatments, p.Treatments...)
		rec.Immunizations = append(rec.Immunizations, p.Immunizations...)
		rec.LabResults = append(rec.LabResults, p.LabResults...)

		if errs := patient.Validate(rec); len(errs) > 0 {
			return nil, fmt.Errorf("fixture patient %q: %v", p.ID, errs)
		}
		set.Patients = append(set.Patients, rec)
	}

	for _, rx := range doc.Prescriptions {
		status := prescription.PrescriptionStatus(rx.Status)
		if rx.ID == "" || !status.IsValid() {
			return nil, fmt.Errorf("fixture prescription %q: invalid id or status %q", rx.ID, rx.Status)
		}
		set.Prescriptions = append(set.Prescriptions, &prescription.Prescription{
			ID:           rx.ID,
			PatientID:    rx.PatientID,
			PatientName:  rx.PatientName,
			Medication:   rx.Medication,
			Dosage:       rx.Dosage,
			Frequency:    rx.Frequency,
			Duration:     rx.Duration,
			Date:         rx.Date,
			Status:       status,
			Instructions: rx.Instructions,
		})
	}

	for _, v := range doc.Vitals {
		if v.ID == "" {
			return nil, fmt.Errorf("fixture vitals reading for %q: missing id", v.PatientID)
		}
		set.Vitals = append(set.Vitals, &vitals.Reading{
			ID:            v.ID,
			PatientID:     v.PatientID,
			PatientName:   v.PatientName,
			RecordedAt:    v.RecordedAt.UTC(),
			BloodPressure: v.BP,
			HeartRate:     v.HR,
			Temperature:   v.Temp,
			SpO2:          v.SpO2,
			RecordedBy:    v.RecordedBy,
		})
	}

	return set, nil
}

// Seed writes the set into repos. Records whose ids already exist are left
// alone, so seeding twice is harmless.
func Seed(ctx context.Context, repos Repos, set *Set) (Summary, error) {
	var (
		sum Summary
		err error
	)

	if sum.Patients, err = repos.Patients.Seed(ctx, set.Patients); err != nil {
		return sum, fmt.Errorf("seeding patients: %w", err)
	}
	if sum.Appointments, err = repos.Appointments.Seed(ctx, set.Appointments); err != nil {
		return sum, fmt.Errorf("seeding appointments: %w", err)
	}
	if sum.Prescriptions, err = repos.Prescriptions.Seed(ctx, set.Prescriptions); err != nil {
		return sum, fmt.Errorf("seeding prescriptions: %w", err)
	}
	if sum.Vitals, err = repos.Vitals.Seed(ctx, set.Vitals); err != nil {
		return sum, fmt.Errorf("seeding vitals: %w", err)
	}

	return sum, nil
}
