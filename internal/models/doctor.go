package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DoctorStatus is the lifecycle state of a doctor application.
type DoctorStatus string

const (
	StatusPending  DoctorStatus = "pending"
	StatusApproved DoctorStatus = "approved"
	StatusRejected DoctorStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s DoctorStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s DoctorStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RemarkAction identifies which transition produced a remark history entry.
type RemarkAction string

const (
	ActionApprove RemarkAction = "approve"
	ActionReject  RemarkAction = "reject"
)

// JSONAddress is the applicant's address stored as a JSONB column.
type JSONAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Value implements driver.Valuer.
func (a JSONAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *JSONAddress) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// StringList is a JSONB array of strings.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// MarshalJSON renders nil lists as empty arrays.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// EducationEntry is one qualification record in the applicant's profile.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        int    `json:"year,omitempty"`
}

// EducationList is a JSONB array of education entries.
type EducationList []EducationEntry

// Value implements driver.Valuer.
func (l EducationList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]EducationEntry{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *EducationList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// MarshalJSON renders nil lists as empty arrays.
func (l EducationList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]EducationEntry(l))
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// Doctor is a doctor application record.
type Doctor struct {
	ID                    string        `db:"id" json:"id"`
	FullName              string        `db:"full_name" json:"fullName"`
	Email                 string        `db:"email" json:"email"`
	PhoneNumber           string        `db:"phone_number" json:"phoneNumber"`
	ProfilePhoto          *string       `db:"profile_photo" json:"profilePhoto,omitempty"`
	Specialization        string        `db:"specialization" json:"specialization"`
	Qualification         string        `db:"qualification" json:"qualification"`
	ExperienceYears       int           `db:"experience_years" json:"experienceYears"`
	RegistrationNumber    string        `db:"registration_number" json:"registrationNumber"`
	Address               JSONAddress   `db:"address" json:"address"`
	Education             EducationList `db:"education" json:"education"`
	Languages             StringList    `db:"languages" json:"languages"`
	About                 *string       `db:"about" json:"about,omitempty"`
	AadhaarCardImage      *string       `db:"aadhaar_card_image" json:"aadhaarCardImage,omitempty"`
	VerificationDocuments StringList    `db:"verification_documents" json:"verificationDocuments"`
	Status                DoctorStatus  `db:"status" json:"status"`
	ApprovedAt            *time.Time    `db:"approved_at" json:"approvedAt,omitempty"`
	ApprovedBy            *string       `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovalRemarks       *string       `db:"approval_remarks" json:"approvalRemarks,omitempty"`
	RejectedAt            *time.Time    `db:"rejected_at" json:"rejectedAt,omitempty"`
	RejectedBy            *string       `db:"rejected_by" json:"rejectedBy,omitempty"`
	RejectionRemarks      *string       `db:"rejection_remarks" json:"rejectionRemarks,omitempty"`
	CreatedAt             time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updatedAt"`
}

// RemarkHistory is one append-only entry in an application's remark trail.
type RemarkHistory struct {
	ID       string       `db:"id" json:"id"`
	DoctorID string       `db:"doctor_id" json:"doctorId"`
	Action   RemarkAction `db:"action" json:"action"`
	Remark   string       `db:"remark" json:"remark"`
	ActedBy  string       `db:"acted_by" json:"by"`
	ActedAt  time.Time    `db:"acted_at" json:"timestamp"`
}

// DoctorFilter captures listing options for one status bucket.
type DoctorFilter struct {
	Status   DoctorStatus
	Search   string
	Page     int
	PageSize int
}

// StatusCounts aggregates applications per lifecycle state.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}
