// Package action defines the discrete action catalog the agent selects from.
// Every action has a stable numeric ID, a name used in logs and reward tables,
// and a category. Unknown IDs are rejected at the environment boundary rather
// than silently no-op'd.
package action

// Category groups actions for reward shaping (navigation penalties, project
// organization bonuses) and for the `actions` CLI listing.
type Category string

const (
	CategoryNavigation    Category = "navigation"
	CategoryProject       Category = "project"
	CategoryTask          Category = "task"
	CategoryCollaboration Category = "collaboration"
	CategoryView          Category = "view"
)

// ID identifies one discrete action. Valid IDs are 0..Count-1.
type ID int

// Count is the size of the action space.
const Count = 50

// Spec describes one catalog entry.
type Spec struct {
	ID       ID
	Name     string
	Category Category
}

// Names referenced directly by the reward engine and the facade.
const (
	NameCreateNewTask       = "create_new_task"
	NameCreateNewProject    = "create_new_project"
	NameSetTaskAssignee     = "set_task_assignee"
	NameSetTaskDueDate      = "set_task_due_date"
	NameAddComment          = "add_comment"
	NameOpenTaskDetail      = "open_task_detail"
	NameEditTaskDescription = "edit_task_description"
)

var catalog = [Count]Spec{
	// Navigation (0-9)
	{0, "navigate_to_dashboard", CategoryNavigation},
	{1, "navigate_to_projects", CategoryNavigation},
	{2, "navigate_to_project_list", CategoryNavigation},
	{3, "navigate_to_project_board", CategoryNavigation},
	{4, "navigate_to_project_timeline", CategoryNavigation},
	{5, "navigate_to_project_calendar", CategoryNavigation},
	{6, "switch_workspace", CategoryNavigation},
	{7, "scroll_up", CategoryNavigation},
	{8, "scroll_down", CategoryNavigation},
	{9, "refresh_page", CategoryNavigation},
	// Project (10-19)
	{10, NameCreateNewProject, CategoryProject},
	{11, "open_project", CategoryProject},
	{12, "edit_project", CategoryProject},
	{13, "archive_project", CategoryProject},
	{14, "change_project_color", CategoryProject},
	{15, "add_project_member", CategoryProject},
	{16, "remove_project_member", CategoryProject},
	{17, "duplicate_project", CategoryProject},
	{18, "delete_project", CategoryProject},
	{19, "set_project_status", CategoryProject},
	// Task (20-34)
	{20, NameCreateNewTask, CategoryTask},
	{21, NameOpenTaskDetail, CategoryTask},
	{22, "edit_task_name", CategoryTask},
	{23, NameEditTaskDescription, CategoryTask},
	{24, NameSetTaskAssignee, CategoryTask},
	{25, NameSetTaskDueDate, CategoryTask},
	{26, "set_task_priority", CategoryTask},
	{27, "change_task_status_todo", CategoryTask},
	{28, "change_task_status_in_progress", CategoryTask},
	{29, "change_task_status_completed", CategoryTask},
	{30, "add_task_dependency", CategoryTask},
	{31, "remove_task_dependency", CategoryTask},
	{32, "add_task_tag", CategoryTask},
	{33, "delete_task", CategoryTask},
	{34, "duplicate_task", CategoryTask},
	// Collaboration (35-44)
	{35, NameAddComment, CategoryCollaboration},
	{36, "reply_to_comment", CategoryCollaboration},
	{37, "edit_comment", CategoryCollaboration},
	{38, "delete_comment", CategoryCollaboration},
	{39, "mention_user", CategoryCollaboration},
	{40, "attach_file", CategoryCollaboration},
	{41, "create_subtask", CategoryCollaboration},
	{42, "convert_to_project", CategoryCollaboration},
	{43, "follow_task", CategoryCollaboration},
	{44, "unfollow_task", CategoryCollaboration},
	// View and filter (45-49)
	{45, "filter_by_assignee", CategoryView},
	{46, "filter_by_status", CategoryView},
	{47, "filter_by_due_date", CategoryView},
	{48, "sort_tasks", CategoryView},
	{49, "search_tasks", CategoryView},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for _, s := range catalog {
		m[s.Name] = s.ID
	}
	return m
}()

// Valid reports whether id is inside the action space.
func Valid(id ID) bool {
	return id >= 0 && id < Count
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Spec, bool) {
	if !Valid(id) {
		return Spec{}, false
	}
	return catalog[id], true
}

// Name returns the action name for id, or "invalid" for out-of-range IDs.
func Name(id ID) string {
	if !Valid(id) {
		return "invalid"
	}
	return catalog[id].Name
}

// ByName returns the ID for an action name.
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns the full catalog in ID order.
func All() []Spec {
	out := make([]Spec, Count)
	copy(out, catalog[:])
	return out
}

// navigationPenaltySet holds the actions that count toward the excessive
// navigation penalty. Narrower than CategoryNavigation on purpose: opening a
// specific project view is goal-directed, scrolling and refreshing are not.
var navigationPenaltySet = map[string]bool{
	"scroll_up":             true,
	"scroll_down":           true,
	"refresh_page":          true,
	"navigate_to_dashboard": true,
}

// CountsTowardNavigationPenalty reports whether name is in the fixed set of
// low-value navigation actions tracked by the reward engine.
func CountsTowardNavigationPenalty(name string) bool {
	return navigationPenaltySet[name]
}

var organizationSet = map[string]bool{
	"edit_project":         true,
	"change_project_color": true,
	"add_project_member":   true,
	"set_project_status":   true,
	"archive_project":      true,
}

// IsOrganization reports whether name is a project-organization action that
// earns the organization bonus regardless of observed state deltas.
func IsOrganization(name string) bool {
	return organizationSet[name]
}

// baseRewards maps action names to the base reward granted on success.
// Unlisted actions earn defaultBaseReward.
var baseRewards = map[string]float64{
	NameCreateNewTask:                0.5,
	NameCreateNewProject:             1.0,
	"change_task_status_completed":   0.8,
	NameAddComment:                   0.3,
	"edit_task_name":                 0.2,
	NameEditTaskDescription:          0.2,
	NameSetTaskAssignee:              0.3,
	NameSetTaskDueDate:               0.3,
	"set_task_priority":              0.2,
	"navigate_to_project_list":       0.1,
	"navigate_to_project_board":      0.1,
	"scroll_up":                      0.05,
	"scroll_down":                    0.05,
	"refresh_page":                   0.0,
}

const defaultBaseReward = 0.1

// BaseReward returns the base reward for a successful execution of name.
func BaseReward(name string) float64 {
	if v, ok := baseRewards[name]; ok {
		return v
	}
	return defaultBaseReward
}
