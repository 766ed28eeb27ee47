package attendascot_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendascot/attendascot"
	"github.com/attendascot/attendascot/config"
)

func TestNewBotWithoutPlugins(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		Build()

	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestNewBotWithSimplePlugin(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPlugin(newTesterPlugin()).
		Build()

	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestNewBotWithPluginAndError(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginErr(newTesterPluginWithErr("")).
		Build()

	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestNewBotWithPluginAndErrorSet(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginErr(newTesterPluginWithErr("error1")).
		Build()

	require.Error(t, err)
	assert.EqualError(t, err, "error1")
	assert.Nil(t, b)
}

func TestNewBotWithPluginAndManyErrors(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginErr(newTesterPluginWithErr("error1")).
		WithPluginErr(newTesterPluginWithErr("error2")).
		WithPlugin(newTesterPlugin()).
		Build()

	require.Error(t, err)
	assert.EqualError(t, err, "error1")
	assert.Nil(t, b)
}

func TestNewBotWithCloserPluginClosingWithError(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginCloserErr(newTesterPluginWithErrAndCloser("", CloseTester{errorMsg: "should be called"})).
		Build()

	require.NoError(t, err)
	require.NotNil(t, b)

	err = b.Close()
	assert.EqualError(t, err, "should be called")
}

func TestNewBotWithCloserPluginClosingWithoutError(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginCloserErr(newTesterPluginWithErrAndCloser("", CloseTester{errorMsg: ""})).
		Build()

	require.NoError(t, err)
	require.NotNil(t, b)

	err = b.Close()
	assert.NoError(t, err)
}

func TestNewBotWithCloserAndErr(t *testing.T) {
	b, err := attendascot.NewBot("jane", config.NewViperWithDefaults()).
		WithPluginCloserErr(newTesterPluginWithErrAndCloser("error1", CloseTester{})).
		WithPluginCloserErr(newTesterPluginWithErrAndCloser("error2", CloseTester{})).
		Build()

	require.Error(t, err)
	assert.EqualError(t, err, "error1")
	assert.Nil(t, b)
}

// newTesterPlugin returns a new tester plugin
func newTesterPlugin() (p *attendascot.Plugin) {
	p = new(attendascot.Plugin)
	p.Name = "tester"
	p.Commands = []attendascot.ActionDefinition{{
		Match: func(m *attendascot.IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "make")
		},
		Usage:       "make `<something>`",
		Description: "Have the test bot make something for you",
		Answer: func(m *attendascot.IncomingMessage) *attendascot.Answer {
			return &attendascot.Answer{Text: "Ready"}
		},
	}}

	return p
}

// newTesterPluginWithErr returns the plugin along with an error if errorMsg is not empty
func newTesterPluginWithErr(errorMsg string) (p *attendascot.Plugin, err error) {
	if errorMsg != "" {
		return nil, fmt.Errorf(errorMsg)
	}

	return newTesterPlugin(), nil
}

// newTesterPluginWithErrAndCloser returns the plugin along with the closer and an error if errorMsg is not empty
func newTesterPluginWithErrAndCloser(errorMsg string, closer io.Closer) (c io.Closer, p *attendascot.Plugin, err error) {
	p, err = newTesterPluginWithErr(errorMsg)

	return closer, p, err
}

// CloseTester is a Closer that either doesn't do anything
// or returns the error set on the CloseTester
type CloseTester struct {
	errorMsg string
}

// Close returns the CloseTester error if set, or just returns nil and does nothing otherwise
func (c CloseTester) Close() (err error) {
	if c.errorMsg != "" {
		return fmt.Errorf(c.errorMsg)
	}

	return nil
}
