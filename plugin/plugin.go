// Package plugin provides a fluent API for creating attendascot plugins. It
// is typically used along with the actions fluent API from
// github.com/attendascot/attendascot/actions
package plugin

import (
	"github.com/attendascot/attendascot"
)

// PluginBuilder holds a plugin to build
type PluginBuilder struct {
	plugin *attendascot.Plugin
}

// New creates a new PluginBuilder with a plugin with the given name and empty set of actions
func New(name string) (pb *PluginBuilder) {
	pb = new(PluginBuilder)
	pb.plugin = new(attendascot.Plugin)
	pb.plugin.Name = name
	pb.plugin.Commands = make([]attendascot.ActionDefinition, 0)
	pb.plugin.HearActions = make([]attendascot.ActionDefinition, 0)
	pb.plugin.ScheduledActions = make([]attendascot.ScheduledActionDefinition, 0)

	return pb
}

// WithCommand adds a command to the plugin
func (pb *PluginBuilder) WithCommand(command attendascot.ActionDefinition) *PluginBuilder {
	pb.plugin.Commands = append(pb.plugin.Commands, command)
	return pb
}

// WithHearAction adds a hear action to the plugin
func (pb *PluginBuilder) WithHearAction(hearAction attendascot.ActionDefinition) *PluginBuilder {
	pb.plugin.HearActions = append(pb.plugin.HearActions, hearAction)
	return pb
}

// WithScheduledAction adds a scheduled action to the plugin
func (pb *PluginBuilder) WithScheduledAction(scheduledAction attendascot.ScheduledActionDefinition) *PluginBuilder {
	pb.plugin.ScheduledActions = append(pb.plugin.ScheduledActions, scheduledAction)
	return pb
}

// Build returns the created Plugin instance
func (pb *PluginBuilder) Build() (p *attendascot.Plugin) {
	return pb.plugin
}
