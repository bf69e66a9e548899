package constants

// Collection names used by the document store
const (
	CollectionProjects = "projects"
	CollectionTasks    = "tasks"
	CollectionUsers    = "users"
)

// Well-known document fields
const (
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
	FieldStatus     = "status"
	FieldPriority   = "priority"
	FieldProjectID  = "projectId"
	FieldAssignedTo = "assignedTo"
	FieldRole       = "role"
	FieldDepartment = "department"
	FieldEmail      = "email"
)

// Dashboard and AI limits
const (
	UpcomingDeadlineLimit = 5
	MaxAIGeneratedTasks   = 20
)

// Display values for weak references that cannot be resolved
const (
	DisplayUnassigned     = "Unassigned"
	DisplayUnknownUser    = "Unknown user"
	DisplayNoProject      = "No project"
	DisplayUnknownProject = "Unknown project"
)
