package plugins

import (
	"fmt"
	"strings"

	"github.com/attendascot/attendascot"
	"github.com/attendascot/attendascot/actions"
	"github.com/attendascot/attendascot/plugin"
)

// Versioner holds the plugin data for the versioner plugin
type Versioner struct {
	attendascot.Plugin
}

const (
	versionerPluginName = "versioner"
)

// NewVersioner creates a new instance of the versioner plugin
func NewVersioner(name string, version string) *Versioner {
	p := plugin.New(versionerPluginName).
		WithCommand(actions.NewCommand().
			WithMatcher(func(m *attendascot.IncomingMessage) bool {
				return strings.HasPrefix(m.NormalizedText, "version")
			}).
			WithUsage("version").
			WithDescriptionf("Reply with `%s`'s `version` number", name).
			WithAnswerer(func(m *attendascot.IncomingMessage) *attendascot.Answer {
				return &attendascot.Answer{Text: fmt.Sprintf("I'm `%s`, version `%s`", name, version)}
			}).
			Build()).
		Build()

	return &Versioner{Plugin: *p}
}
