package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CareerStatus string

const (
	CareerStatusActive CareerStatus = "Active"
	CareerStatusClosed CareerStatus = "Closed"
	CareerStatusDraft  CareerStatus = "Draft"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "Full-time"
	EmploymentPartTime   EmploymentType = "Part-time"
	EmploymentContract   EmploymentType = "Contract"
	EmploymentInternship EmploymentType = "Internship"
)

type Career struct {
	gorm.Model
	Title            string                      `json:"title" gorm:"not null"`
	Department       string                      `json:"department" gorm:"not null"`
	Location         string                      `json:"location" gorm:"not null"`
	Type             EmploymentType              `json:"type" gorm:"size:20;default:'Full-time'"`
	ExperienceMin    int                         `json:"experience_min"`
	ExperienceMax    int                         `json:"experience_max"`
	SalaryMin        int                         `json:"salary_min"`
	SalaryMax        int                         `json:"salary_max"`
	Description      string                      `json:"description" gorm:"type:text;not null"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	Responsibilities datatypes.JSONSlice[string] `json:"responsibilities"`
	Benefits         datatypes.JSONSlice[string] `json:"benefits"`
	Status           CareerStatus                `json:"status" gorm:"size:20;default:'Active'"`
	Deadline         *time.Time                  `json:"application_deadline"`
	PostedByID       uint                        `json:"posted_by_id" gorm:"index"`
	PostedBy         User                        `json:"posted_by" gorm:"foreignKey:PostedByID"`

	Applications []CareerApplication `json:"applications,omitempty" gorm:"foreignKey:CareerID"`
}

type CareerApplication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CareerID  uint      `json:"career_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	Email     string    `json:"email" gorm:"size:255"`
	Phone     string    `json:"phone" gorm:"size:50"`
	ResumeURL string    `json:"resume_url"`
	AppliedAt time.Time `json:"applied_at" gorm:"autoCreateTime"`
}

func (CareerApplication) TableName() string {
	return "career_applications"
}
