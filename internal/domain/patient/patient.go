package patient

import (
	"strings"
	"time"

	"github.com/eyualpha/HealthLink/internal/domain"
)

// ListKey names one of the editable string lists on a record.
type ListKey string

const (
	ListAllergies          ListKey = "allergies"
	ListMedicalHistory     ListKey = "medicalHistory"
	ListCurrentMedications ListKey = "currentMedications"
)

func (k ListKey) IsValid() bool {
	switch k {
	case ListAllergies, ListMedicalHistory, ListCurrentMedications:
		return true
	}
	return false
}

type Diagnosis struct {
	Date      string `json:"date"`
	Condition string `json:"condition"`
	Doctor    string `json:"doctor"`
}

type Treatment struct {
	Date      string `json:"date"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
}

type Immunization struct {
	Vaccine string `json:"vaccine"`
	Date    string `json:"date"`
}

type LabResult struct {
	Test   string `json:"test"`
	Date   string `json:"date"`
	Result string `json:"result"`
	Status string `json:"status"`
}

// Record is a patient chart. The same type doubles as the editable draft.
type Record struct {
	ID               string `gorm:"column:id;type:varchar(20);primaryKey" json:"id"`
	Name             string `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	Age              int    `gorm:"column:age;not null" json:"age"`
	Gender           string `gorm:"column:gender;type:varchar(20);not null" json:"gender"`
	BloodType        string `gorm:"column:blood_type;type:varchar(5);not null" json:"bloodType"`
	Phone            string `gorm:"column:phone;type:varchar(30);not null" json:"phone"`
	Email            string `gorm:"column:email;type:varchar(255)" json:"email"`
	Address          string `gorm:"column:address;type:text" json:"address"`
	EmergencyContact string `gorm:"column:emergency_contact;type:varchar(100)" json:"emergencyContact"`

	Allergies          []string       `gorm:"column:allergies;serializer:json" json:"allergies"`
	MedicalHistory     []string       `gorm:"column:medical_history;serializer:json" json:"medicalHistory"`
	CurrentMedications []string       `gorm:"column:current_medications;serializer:json" json:"currentMedications"`
	Diagnoses          []Diagnosis    `gorm:"column:diagnoses;serializer:json" json:"diagnoses"`
	Treatments         []Treatment    `gorm:"column:treatments;serializer:json" json:"treatments"`
	Immunizations      []Immunization `gorm:"column:immunizations;serializer:json" json:"immunizations"`
	LabResults         []LabResult    `gorm:"column:lab_results;serializer:json" json:"labResults"`

	LastVisit string `gorm:"column:last_visit;type:varchar(10)" json:"lastVisit"`

	Position  int64     `gorm:"column:position;not null;index" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Record) TableName() string {
	return "patient_records"
}

// NewDraft returns the empty record used in create mode.
func NewDraft() *Record {
	return &Record{
		Allergies:          []string{},
		MedicalHistory:     []string{},
		CurrentMedications: []string{},
		Diagnoses:          []Diagnosis{},
		Treatments:         []Treatment{},
		Immunizations:      []Immunization{},
		LabResults:         []LabResult{},
	}
}

// FieldErrors maps a json field name to its message.
type FieldErrors map[string]string

// Validate checks the fields a save requires. The result is empty iff the
// draft can be saved.
func Validate(r *Record) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(r.ID) == "" {
		errs["id"] = "Patient ID is required"
	}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(r.Gender) == "" {
		errs["gender"] = "Gender is required"
	}
	if strings.TrimSpace(r.BloodType) == "" {
		errs["bloodType"] = "Blood type is required"
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs["phone"] = "Phone is required"
	}
	if r.Age <= 0 {
		errs["age"] = "Age must be greater than 0"
	}
	return errs
}

func (r *Record) list(key ListKey) (*[]string, error) {
	switch key {
	case ListAllergies:
		return &r.Allergies, nil
	case ListMedicalHistory:
		return &r.MedicalHistory, nil
	case ListCurrentMedications:
		return &r.CurrentMedications, nil
	}
	return nil, ErrInvalidListField
}

// AddListItem appends the trimmed value. Blank values are ignored and
// duplicates are kept. Reports whether the record changed.
func (r *Record) AddListItem(key ListKey, value string) (bool, error) {
	items, err := r.list(key)
	if err != nil {
		return false, err
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return false, nil
	}
	*items = append(*items, v)
	return true, nil
}

// RemoveListItem drops the item at index.
func (r *Record) RemoveListItem(key ListKey, index int) error {
	items, err := r.list(key)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*items) {
		return ErrListIndexOutOfRange
	}
	out := make([]string, 0, len(*items)-1)
	out = append(out, (*items)[:index]...)
	out = append(out, (*items)[index+1:]...)
	*items = out
	return nil
}

// Matches applies the name-or-id search.
func (r *Record) Matches(search string) bool {
	return domain.ContainsFold(r.Name, search) || domain.ContainsFold(r.ID, search)
}

// Clone returns a deep copy so stored records never alias caller memory.
func (r *Record) Clone() *Record {
	c := *r
	c.Allergies = append([]string{}, r.Allergies...)
	c.MedicalHistory = append([]string{}, r.MedicalHistory...)
	c.CurrentMedications = append([]string{}, r.CurrentMedications...)
	c.Diagnoses = append([]Diagnosis{}, r.Diagnoses...)
	c.Treatments = append([]Treatment{}, r.Treatments...)
	c.Immunizations = append([]Immunization{}, r.Immunizations...)
	c.LabResults = append([]LabResult{}, r.LabResults...)
	return &c
}

// Normalize trims the scalar fields before a save.
func (r *Record) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.BloodType = strings.TrimSpace(r.BloodType)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	r.EmergencyContact = strings.TrimSpace(r.EmergencyContact)
}

type ListPatientsQuery struct {
	Search string
}
