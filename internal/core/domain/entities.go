package domain

// Role represents a user role in the system
type Role string

const (
	RoleSurveyor   Role = "SURVEYOR"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSurveyor, RoleSupervisor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AssignmentType designates a surveyor's binding to a ward-mohalla unit
type AssignmentType string

const (
	AssignmentPrimary   AssignmentType = "PRIMARY"
	AssignmentSecondary AssignmentType = "SECONDARY"
)

// Valid reports whether the assignment type is known
func (t AssignmentType) Valid() bool {
	return t == AssignmentPrimary || t == AssignmentSecondary
}

// Ward status codes (master table `ward_statuses`).
// A ward's boolean active flag derives from its active status being STARTED.
const (
	WardStatusNotStarted = "NOT_STARTED"
	WardStatusStarted    = "STARTED"
	WardStatusOnHold     = "ON_HOLD"
	WardStatusCompleted  = "COMPLETED"
)

// QCStatus is the per-survey, per-level review decision
type QCStatus string

const (
	QCPending  QCStatus = "PENDING"
	QCApproved QCStatus = "APPROVED"
	QCRejected QCStatus = "REJECTED"
	QCReverted QCStatus = "REVERTED"
)

// Valid reports whether the QC status is known
func (s QCStatus) Valid() bool {
	switch s {
	case QCPending, QCApproved, QCRejected, QCReverted:
		return true
	}
	return false
}

// QCErrorType annotates why a rejection occurred; orthogonal to the status itself
type QCErrorType string

const (
	QCErrorNone      QCErrorType = "NONE"
	QCErrorMissing   QCErrorType = "MISSING"
	QCErrorDuplicate QCErrorType = "DUPLICATE"
	QCErrorOther     QCErrorType = "OTHER"
)

// Valid reports whether the error type is known
func (t QCErrorType) Valid() bool {
	switch t {
	case QCErrorNone, QCErrorMissing, QCErrorDuplicate, QCErrorOther:
		return true
	}
	return false
}

// QC section keys - the fixed decomposition of a survey for section-level review
const (
	SectionLocation    = "LOCATION"
	SectionProperty    = "PROPERTY"
	SectionOwner       = "OWNER"
	SectionOther       = "OTHER"
	SectionAssessments = "ASSESSMENTS"
	SectionAttachments = "ATTACHMENTS"
)

// SectionKeys lists all reviewable sections in review order
var SectionKeys = []string{
	SectionLocation,
	SectionProperty,
	SectionOwner,
	SectionOther,
	SectionAssessments,
	SectionAttachments,
}

// ValidSectionKey reports whether key names a known section
func ValidSectionKey(key string) bool {
	for _, k := range SectionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// MaxQCLevel is the highest review level a survey passes through
// (1 = field supervisor review, 2 = office review, 3 = final sign-off)
const MaxQCLevel = 3

// Audit actions recorded by the audit logger
const (
	ActionRoleAssign         = "ROLE_ASSIGN"
	ActionRoleRemove         = "ROLE_REMOVE"
	ActionSurveyorAssign     = "SURVEYOR_ASSIGN"
	ActionSurveyorBulkAssign = "SURVEYOR_BULK_ASSIGN"
	ActionSupervisorAssign   = "SUPERVISOR_ASSIGN"
	ActionSupervisorRemove   = "SUPERVISOR_REMOVE"
	ActionAssignmentStatus   = "ASSIGNMENT_STATUS"
	ActionAccessToggle       = "ACCESS_TOGGLE"
	ActionAccessSweep        = "ACCESS_SWEEP"
	ActionWardStatusChange   = "WARD_STATUS_CHANGE"
	ActionQCDecision         = "QC_DECISION"
	ActionQCSectionDecision  = "QC_SECTION_DECISION"
)
