package models

// TeamPermission names a boolean capability flag on a team membership.
type TeamPermission string

const (
	PermissionManageHours        TeamPermission = "canManageHours"
	PermissionManageAppointments TeamPermission = "canManageAppointments"
	PermissionViewAppointments   TeamPermission = "canViewAppointments"
)

// Column returns the team_members column backing the permission.
func (p TeamPermission) Column() (string, bool) {
	switch p {
	case PermissionManageHours:
		return "can_manage_hours", true
	case PermissionManageAppointments:
		return "can_manage_appointments", true
	case PermissionViewAppointments:
		return "can_view_appointments", true
	}
	return "", false
}
