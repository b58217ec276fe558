package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/skoglund/timegrid/internal/api"
	"github.com/skoglund/timegrid/internal/catalog"
	"github.com/skoglund/timegrid/internal/date"
	"github.com/skoglund/timegrid/internal/holiday"
	"github.com/skoglund/timegrid/internal/recur"
	"github.com/skoglund/timegrid/internal/store"
)

func recurPattern(s string) (recur.Pattern, error) {
	p, err := recur.Parse(s)
	if err != nil {
		return recur.Pattern{}, fmt.Errorf("parsing pattern: %w", err)
	}
	return p, nil
}

func resolveDates(p recur.Pattern, from, to date.Date, rules holiday.Rules, cal *holiday.Calendar) []date.Date {
	return recur.Resolve(p, from, to, func(d date.Date) bool {
		return holiday.IsForbidden(d, rules, cal)
	})
}

// resolveClient matches a --client argument against the catalog by id or
// case-insensitive name.
func resolveClient(cat *catalog.Catalog, arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("--client is required")
	}
	for _, c := range cat.Clients() {
		if c.ID == arg || strings.EqualFold(c.Name, arg) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("unknown client %q, run 'timegrid projects' to list them", arg)
}

// resolveProject matches a --project argument within the client's projects,
// defaulting to the client's first project when the argument is empty.
func resolveProject(cat *catalog.Catalog, clientID, arg string) (string, error) {
	if arg == "" {
		id := cat.FirstProjectID(clientID)
		if id == "" {
			return "", fmt.Errorf("client %q has no projects", cat.ClientName(clientID))
		}
		return id, nil
	}
	for _, p := range cat.ProjectsFor(clientID) {
		if p.ID == arg || strings.EqualFold(p.Name, arg) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("project %q not found under client %q", arg, cat.ClientName(clientID))
}

// resolveUserName returns the account's display name, fetching it once and
// caching it in the local state table.
func resolveUserName(ctx context.Context, client *api.HTTPClient, db *store.DB) (string, error) {
	if name, err := db.GetState("user_name"); err == nil && name != "" {
		return name, nil
	}

	user, err := client.GetUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting user info: %w", err)
	}

	if err := db.SetState("user_name", user.Name); err != nil {
		return user.Name, nil
	}
	return user.Name, nil
}
