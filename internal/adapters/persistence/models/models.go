package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Identity & Roles
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:100" json:"full_name"`
	Mobile    string         `gorm:"size:15" json:"mobile"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Mobile    string    `json:"mobile"`
	Role      string    `json:"role,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Mobile:    u.Mobile,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// UserRoleMapping represents user_role_mappings table.
// At most one mapping per user carries is_active=true at any time.
type UserRoleMapping struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_role_user_active" json:"user_id"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	IsActive  bool      `gorm:"default:true;index:idx_role_user_active" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserRoleMapping) TableName() string {
	return "user_role_mappings"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Geographic hierarchy (ULB -> Zone -> Ward -> Mohalla)
// ============================================================

// Ulb represents ulbs table (Urban Local Body)
type Ulb struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Ulb) TableName() string {
	return "ulbs"
}

// Zone represents zones table
type Zone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Zone) TableName() string {
	return "zones"
}

// Ward represents wards table.
// IsActive is derived from the ward's active status mapping; it is never set directly.
type Ward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:false" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Ward) TableName() string {
	return "wards"
}

// Mohalla represents mohallas table.
// Mohallas carry no status of their own; status is read through the owning ward.
type Mohalla struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Mohalla) TableName() string {
	return "mohallas"
}

// UlbZoneMapping represents ulb_zone_mappings table
type UlbZoneMapping struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UlbID    uint `gorm:"not null;index" json:"ulb_id"`
	ZoneID   uint `gorm:"not null;index" json:"zone_id"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	Ulb  *Ulb  `gorm:"foreignKey:UlbID" json:"ulb,omitempty"`
	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

func (UlbZoneMapping) TableName() string {
	return "ulb_zone_mappings"
}

// ZoneWardMapping represents zone_ward_mappings table
type ZoneWardMapping struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ZoneID   uint `gorm:"not null;index" json:"zone_id"`
	WardID   uint `gorm:"not null;index" json:"ward_id"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
	Ward *Ward `gorm:"foreignKey:WardID" json:"ward,omitempty"`
}

func (ZoneWardMapping) TableName() string {
	return "zone_ward_mappings"
}

// WardMohallaMapping represents ward_mohalla_mappings table
type WardMohallaMapping struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	WardID    uint `gorm:"not null;index" json:"ward_id"`
	MohallaID uint `gorm:"not null;index" json:"mohalla_id"`
	IsActive  bool `gorm:"default:true" json:"is_active"`

	Ward    *Ward    `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	Mohalla *Mohalla `gorm:"foreignKey:MohallaID" json:"mohalla,omitempty"`
}

func (WardMohallaMapping) TableName() string {
	return "ward_mohalla_mappings"
}

// ============================================================
// Ward status
// ============================================================

// WardStatus represents ward_statuses master table
type WardStatus struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WardStatus) TableName() string {
	return "ward_statuses"
}

// WardStatusMapping represents ward_status_mappings table.
// At most one mapping per ward carries is_active=true at any time.
type WardStatusMapping struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WardID    uint      `gorm:"not null;index:idx_ward_status_active" json:"ward_id"`
	StatusID  uint      `gorm:"not null" json:"status_id"`
	IsActive  bool      `gorm:"default:true;index:idx_ward_status_active" json:"is_active"`
	ChangedBy uint      `gorm:"not null" json:"changed_by"`
	Remark    string    `gorm:"type:text" json:"remark"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Ward    *Ward       `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	Status  *WardStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Changer *User       `gorm:"foreignKey:ChangedBy" json:"changer,omitempty"`
}

func (WardStatusMapping) TableName() string {
	return "ward_status_mappings"
}

// ============================================================
// Personnel profiles & assignments
// ============================================================

// Surveyor represents surveyors profile table.
// The three mapping ids are denormalized from the surveyor's current assignment.
type Surveyor struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	WardMohallaMapID   *uint      `json:"ward_mohalla_map_id"`
	ZoneWardMapID      *uint      `json:"zone_ward_map_id"`
	UlbZoneMapID       *uint      `json:"ulb_zone_map_id"`
	IsActive           bool       `gorm:"default:true" json:"is_active"`
	LastActiveAt       *time.Time `json:"last_active_at"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Surveyor) TableName() string {
	return "surveyors"
}

// Supervisor represents supervisors profile table.
// A supervisor has one current ward; rebinding overwrites, the audit log keeps history.
type Supervisor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	WardID    *uint     `json:"ward_id"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Ward *Ward `gorm:"foreignKey:WardID" json:"ward,omitempty"`
}

func (Supervisor) TableName() string {
	return "supervisors"
}

// SurveyorAssignment represents surveyor_assignments table.
// At most one row per (surveyor, ward, mohalla) carries is_active=true; the
// composite index backs the in-transaction duplicate check.
type SurveyorAssignment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SurveyorUserID uint      `gorm:"not null;index:idx_assignment_triple" json:"surveyor_user_id"`
	WardID         uint      `gorm:"not null;index:idx_assignment_triple" json:"ward_id"`
	MohallaID      uint      `gorm:"not null;index:idx_assignment_triple" json:"mohalla_id"`
	AssignmentType string    `gorm:"size:20;not null;default:'PRIMARY'" json:"assignment_type"`
	AssignedByID   uint      `gorm:"not null" json:"assigned_by_id"`
	IsActive       bool      `gorm:"default:true;index:idx_assignment_triple" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Surveyor   *User    `gorm:"foreignKey:SurveyorUserID" json:"surveyor,omitempty"`
	Ward       *Ward    `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	Mohalla    *Mohalla `gorm:"foreignKey:MohallaID" json:"mohalla,omitempty"`
	AssignedBy *User    `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
}

func (SurveyorAssignment) TableName() string {
	return "surveyor_assignments"
}

// AssignmentResponse DTO
type AssignmentResponse struct {
	ID             uint      `json:"id"`
	SurveyorUserID uint      `json:"surveyor_user_id"`
	SurveyorName   string    `json:"surveyor_name,omitempty"`
	WardID         uint      `json:"ward_id"`
	WardName       string    `json:"ward_name,omitempty"`
	MohallaID      uint      `json:"mohalla_id"`
	MohallaName    string    `json:"mohalla_name,omitempty"`
	AssignmentType string    `json:"assignment_type"`
	AssignedByID   uint      `json:"assigned_by_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *SurveyorAssignment) ToResponse() *AssignmentResponse {
	resp := &AssignmentResponse{
		ID:             a.ID,
		SurveyorUserID: a.SurveyorUserID,
		WardID:         a.WardID,
		MohallaID:      a.MohallaID,
		AssignmentType: a.AssignmentType,
		AssignedByID:   a.AssignedByID,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
	}

	if a.Surveyor != nil {
		resp.SurveyorName = a.Surveyor.Username
	}
	if a.Ward != nil {
		resp.WardName = a.Ward.Name
	}
	if a.Mohalla != nil {
		resp.MohallaName = a.Mohalla.Name
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&User{},
		&UserRoleMapping{},
		&RefreshToken{},
		// Geography
		&Ulb{},
		&Zone{},
		&Ward{},
		&Mohalla{},
		&UlbZoneMapping{},
		&ZoneWardMapping{},
		&WardMohallaMapping{},
		// Ward status
		&WardStatus{},
		&WardStatusMapping{},
		// Personnel
		&Surveyor{},
		&Supervisor{},
		&SurveyorAssignment{},
		// Surveys & QC
		&SurveyRecord{},
		&QCRecord{},
		&QCSectionRecord{},
		// Audit
		&AuditLog{},
	)
}
