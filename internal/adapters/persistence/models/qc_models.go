package models

import (
	"time"
)

// ============================================================
// Survey intake & QC review
// ============================================================

// SurveyRecord represents survey_records table.
// Rows are produced by the intake component and are immutable here; the QC
// state machine only attaches review records to them.
type SurveyRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UniqueCode     string    `gorm:"size:36;uniqueIndex;not null" json:"unique_code"`
	WardID         uint      `gorm:"not null;index" json:"ward_id"`
	MohallaID      uint      `gorm:"not null;index" json:"mohalla_id"`
	SurveyorUserID uint      `gorm:"not null;index" json:"surveyor_user_id"`
	SubmittedAt    time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	Ward     *Ward    `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	Mohalla  *Mohalla `gorm:"foreignKey:MohallaID" json:"mohalla,omitempty"`
	Surveyor *User    `gorm:"foreignKey:SurveyorUserID" json:"surveyor,omitempty"`
}

func (SurveyRecord) TableName() string {
	return "survey_records"
}

// QCRecord represents qc_records table.
// Exactly one row exists per (survey, level); a second decision at the same
// level updates the row in place.
type QCRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SurveyID          uint      `gorm:"not null;uniqueIndex:uq_qc_survey_level" json:"survey_id"`
	Level             int       `gorm:"not null;uniqueIndex:uq_qc_survey_level" json:"level"`
	Status            string    `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	ReviewedByID      *uint     `json:"reviewed_by_id"`
	Remark            string    `gorm:"type:text" json:"remark"`
	RIRemark          string    `gorm:"type:text" json:"ri_remark"`
	GISRemark         string    `gorm:"type:text" json:"gis_remark"`
	SurveyTeamRemark  string    `gorm:"type:text" json:"survey_team_remark"`
	IsError           bool      `gorm:"default:false" json:"is_error"`
	ErrorType         string    `gorm:"size:20;not null;default:'NONE'" json:"error_type"`
	RevertedFromLevel *int      `json:"reverted_from_level"`
	RevertedReason    string    `gorm:"type:text" json:"reverted_reason"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Survey   *SurveyRecord `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	Reviewer *User         `gorm:"foreignKey:ReviewedByID" json:"reviewer,omitempty"`
}

func (QCRecord) TableName() string {
	return "qc_records"
}

// QCSectionRecord represents qc_section_records table.
// A survey/level pair decomposes into named sections decided independently.
type QCSectionRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SurveyID     uint      `gorm:"not null;uniqueIndex:uq_qc_section" json:"survey_id"`
	Level        int       `gorm:"not null;uniqueIndex:uq_qc_section" json:"level"`
	SectionKey   string    `gorm:"size:20;not null;uniqueIndex:uq_qc_section" json:"section_key"`
	Status       string    `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	ReviewedByID *uint     `json:"reviewed_by_id"`
	Remark       string    `gorm:"type:text" json:"remark"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Survey   *SurveyRecord `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	Reviewer *User         `gorm:"foreignKey:ReviewedByID" json:"reviewer,omitempty"`
}

func (QCSectionRecord) TableName() string {
	return "qc_section_records"
}

// AuditLog represents audit_logs table. Append-only; never updated or deleted.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:50;not null;index" json:"action"`
	OldValue  string    `gorm:"type:text" json:"old_value"`
	NewValue  string    `gorm:"type:text" json:"new_value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
