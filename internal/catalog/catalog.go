// Package catalog provides id-keyed views over the server's clients,
// projects, and tasks, answering the dependent-selection queries the weekly
// grid needs: which projects belong to a client, which tasks to a project,
// and what the first choice is after a parent changes.
package catalog

import "github.com/skoglund/timegrid/internal/api"

type Catalog struct {
	clients  []api.Client
	projects []api.Project
	tasks    []api.Task

	clientByID  map[string]api.Client
	projectByID map[string]api.Project

	projectsByClient map[string][]api.Project
	tasksByProject   map[string][]api.Task
}

// New indexes one catalog snapshot. Slice order is preserved so "first
// project of a client" follows the server's ordering.
func New(snapshot *api.Catalog) *Catalog {
	c := &Catalog{
		clients:          snapshot.Clients,
		projects:         snapshot.Projects,
		tasks:            snapshot.Tasks,
		clientByID:       make(map[string]api.Client, len(snapshot.Clients)),
		projectByID:      make(map[string]api.Project, len(snapshot.Projects)),
		projectsByClient: make(map[string][]api.Project),
		tasksByProject:   make(map[string][]api.Task),
	}

	for _, cl := range snapshot.Clients {
		c.clientByID[cl.ID] = cl
	}
	for _, p := range snapshot.Projects {
		c.projectByID[p.ID] = p
		c.projectsByClient[p.ClientID] = append(c.projectsByClient[p.ClientID], p)
	}
	for _, t := range snapshot.Tasks {
		c.tasksByProject[t.ProjectID] = append(c.tasksByProject[t.ProjectID], t)
	}

	return c
}

func (c *Catalog) Clients() []api.Client {
	return c.clients
}

func (c *Catalog) ClientName(id string) string {
	return c.clientByID[id].Name
}

func (c *Catalog) ProjectName(id string) string {
	return c.projectByID[id].Name
}

// ProjectsFor returns the projects belonging to the client, in server order.
func (c *Catalog) ProjectsFor(clientID string) []api.Project {
	return c.projectsByClient[clientID]
}

// TasksFor returns the tasks belonging to the project, in server order.
func (c *Catalog) TasksFor(projectID string) []api.Task {
	return c.tasksByProject[projectID]
}

// FirstProjectID returns the id of the client's first project, or "" when
// the client has none.
func (c *Catalog) FirstProjectID(clientID string) string {
	projects := c.projectsByClient[clientID]
	if len(projects) == 0 {
		return ""
	}
	return projects[0].ID
}

// FirstTaskName returns the name of the project's first task, or "" when
// the project has none.
func (c *Catalog) FirstTaskName(projectID string) string {
	tasks := c.tasksByProject[projectID]
	if len(tasks) == 0 {
		return ""
	}
	return tasks[0].Name
}

// ProjectBelongsTo reports whether the project exists under the client.
func (c *Catalog) ProjectBelongsTo(projectID, clientID string) bool {
	p, ok := c.projectByID[projectID]
	return ok && p.ClientID == clientID
}
