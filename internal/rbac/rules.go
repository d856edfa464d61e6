package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
	},
	"teacher": {
		"quiz:view",
		"attempt:view-own",
		"attempt:view-all",
	},
	"admin": {
		"*", // everything
	},
}
