package rbac

const (
	RoleViewer  = "viewer"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

const (
	PermModelView      = "model:view"
	PermModelCompute   = "model:compute"
	PermScenarioView   = "scenario:view"
	PermScenarioSave   = "scenario:save"
	PermScenarioDelete = "scenario:delete"
	PermEventsView     = "events:view"
)

// Default policy. Analysts may delete their own scenarios through
// RequireOwnerOr; only admins hold scenario:delete outright.
var RolePermissions = map[string][]string{
	RoleViewer: {
		PermModelView,
		PermScenarioView,
	},
	RoleAnalyst: {
		"model:*",
		PermScenarioView,
		PermScenarioSave,
	},
	RoleAdmin: {
		"*", // everything
	},
}

// KnownRole reports whether role appears in the default policy.
func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
