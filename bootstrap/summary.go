package bootstrap

import (
	"context"
	"time"

	"github.com/kapeta/sdk-go-redis/component"
	"github.com/kapeta/sdk-go-redis/logger"
	"github.com/kapeta/sdk-go-redis/version"
)

// ComponentSummary is one line of the startup summary.
type ComponentSummary struct {
	Name    string
	Type    string
	Details string
	Status  component.HealthStatus
}

// Summary collects a summary line per registered component.
func (a *App[C]) Summary(ctx context.Context) []ComponentSummary {
	health := make(map[string]component.Health)
	for _, h := range a.Components.HealthAll(ctx) {
		health[h.Name] = h
	}

	var out []ComponentSummary
	for _, c := range a.Components.All() {
		s := ComponentSummary{Name: c.Name(), Status: health[c.Name()].Status}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				s.Name = desc.Name
			}
			s.Type = desc.Type
			s.Details = desc.Details
		}
		out = append(out, s)
	}
	return out
}

func (a *App[C]) logSummary(ctx context.Context, startup time.Duration) {
	components := a.Summary(ctx)
	a.Logger.Info("Application started", logger.MergeWithDuration(logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"build", version.Get().String(),
		"components", len(components),
	), startup))

	for _, s := range components {
		a.Logger.Info("Component", logger.Fields(
			logger.FieldComponent, s.Name,
			"type", s.Type,
			logger.FieldStatus, string(s.Status),
			"details", s.Details,
		))
	}
}
