package types

// Portal roles, lowest to highest
const (
	RoleViewer = "viewer"
	RoleCoach  = "coach"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// Approval request status values
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Approval decision values
const (
	DecisionApprove = "approved"
	DecisionReject  = "rejected"
)

// Approval action tags. The executor dispatches on this closed set;
// anything else is rejected as an unknown action.
const (
	ActionPlayerCreate   = "players.create"
	ActionPlayerUpdate   = "players.update"
	ActionPlayerDelete   = "players.delete"
	ActionPlayerMove     = "players.move"
	ActionPlanningCreate = "planning.create"
	ActionPlanningDelete = "planning.delete"
	ActionTeamCreate     = "teams.create"
)

// Team categories
const (
	CategoryU9      = "u9"
	CategoryU11     = "u11"
	CategoryU13     = "u13"
	CategoryU15     = "u15"
	CategoryU17     = "u17"
	CategorySenior  = "senior"
	CategoryLoisir  = "loisir"
	CategoryVeteran = "veteran"
)

// Planning weekdays
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// Attendance status values
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// Valid values for validation
var ValidRoles = []string{RoleViewer, RoleCoach, RoleStaff, RoleAdmin}

var ValidApprovalActions = []string{
	ActionPlayerCreate, ActionPlayerUpdate, ActionPlayerDelete, ActionPlayerMove,
	ActionPlanningCreate, ActionPlanningDelete, ActionTeamCreate,
}

var ValidCategories = []string{
	CategoryU9, CategoryU11, CategoryU13, CategoryU15,
	CategoryU17, CategorySenior, CategoryLoisir, CategoryVeteran,
}

var ValidWeekdays = []string{
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

var ValidAttendanceStatuses = []string{
	AttendancePresent, AttendanceAbsent, AttendanceExcused,
}

// RoleLevel returns numeric level for role comparison (higher = more permissions)
func RoleLevel(role string) int {
	switch role {
	case RoleAdmin:
		return 4
	case RoleStaff:
		return 3
	case RoleCoach:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// HasMinimumRole checks if role has at least the minimum required role
func HasMinimumRole(role, minRole string) bool {
	return RoleLevel(role) >= RoleLevel(minRole)
}

// NormalizeRole converts various role formats to the portal's lowercase
// values; anything unrecognized degrades to viewer
func NormalizeRole(role string) string {
	switch role {
	case "ADMIN", RoleAdmin:
		return RoleAdmin
	case "STAFF", RoleStaff:
		return RoleStaff
	case "COACH", RoleCoach:
		return RoleCoach
	case "VIEWER", RoleViewer:
		return RoleViewer
	default:
		return RoleViewer
	}
}

// Helper functions for validation
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidApprovalAction(action string) bool {
	for _, a := range ValidApprovalActions {
		if a == action {
			return true
		}
	}
	return false
}

func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

func IsValidWeekday(day string) bool {
	for _, d := range ValidWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

func IsValidAttendanceStatus(status string) bool {
	for _, s := range ValidAttendanceStatuses {
		if s == status {
			return true
		}
	}
	return false
}
