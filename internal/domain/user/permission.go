package user

type Permission string

const (
	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveDecide  Permission = "leave.decide"
	PermissionLeaveUnlock  Permission = "leave.unlock"

	// On duty
	PermissionODCreate Permission = "od.create"
	PermissionODDecide Permission = "od.decide"

	// Punch missed
	PermissionPunchMissedCreate Permission = "punch_missed.create"
	PermissionPunchMissedDecide Permission = "punch_missed.decide"

	// Attendance
	PermissionAttendanceViewOwn   Permission = "attendance.view_own"
	PermissionAttendanceViewAll   Permission = "attendance.view_all"
	PermissionAttendanceReconcile Permission = "attendance.reconcile"
	PermissionLateArrivalDecide   Permission = "attendance.late_arrival_decide"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionODCreate,
		PermissionPunchMissedCreate,
		PermissionAttendanceViewOwn,
	},
	RoleHOD: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveDecide,
		PermissionODCreate,
		PermissionODDecide,
		PermissionPunchMissedCreate,
		PermissionPunchMissedDecide,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionLateArrivalDecide,
	},
	RoleAdmin: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveDecide,
		PermissionLeaveUnlock,
		PermissionODCreate,
		PermissionODDecide,
		PermissionPunchMissedCreate,
		PermissionPunchMissedDecide,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReconcile,
	},
	RoleCEO: {
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveViewAll,
		PermissionLeaveDecide,
		PermissionLeaveUnlock,
		PermissionODCreate,
		PermissionODDecide,
		PermissionPunchMissedCreate,
		PermissionPunchMissedDecide,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceReconcile,
		PermissionLateArrivalDecide,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
