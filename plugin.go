package attendascot

import (
	"fmt"

	"github.com/nlopes/slack"
	"github.com/attendascot/attendascot/schedule"
)

// Plugin represents a plugin (its name, action definitions and scheduled
// actions). Services are injected by the engine before any action runs and
// are therefore available to all Matcher/Answerer implementations
type Plugin struct {
	Name             string
	Commands         []ActionDefinition
	HearActions      []ActionDefinition
	ScheduledActions []ScheduledActionDefinition

	// Services injected by the engine on startup, prior to handling messages
	Logger            SLogger
	UserInfoFinder    UserInfoFinder
	RealTimeMsgSender RealTimeMessageSender
}

// IncomingMessage holds data for an incoming slack message along with the
// normalized text content. The normalized text is the message text stripped
// of the "<@Mention>" prefix when a command was formed by mentioning the bot,
// making matchers insensitive to how the command was addressed
type IncomingMessage struct {
	NormalizedText string
	slack.Msg
}

// ActionDefinition represents how an action is triggered, published, used and
// described along with the function defining its behavior
type ActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Matcher that will determine whether or not the action should be triggered
	Match Matcher

	// Usage example
	Usage string

	// Help description for the action
	Description string

	// Function to execute if the Matcher matches
	Answer Answerer
}

// Matcher is the function that determines whether or not an action should be
// triggered. Note that a match doesn't guarantee that the action should
// actually respond with anything once invoked
type Matcher func(m *IncomingMessage) bool

// Answerer is what gets executed when an ActionDefinition is triggered. A nil
// answer means the action has nothing to say
type Answerer func(m *IncomingMessage) *Answer

// ScheduledActionDefinition represents when a scheduled action is triggered
// as well as what it does and how
type ScheduledActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	schedule.Definition

	// Help description for the scheduled action
	Description string

	// ScheduledAction is the function that is invoked when the schedule activates
	Action ScheduledAction
}

// ScheduledAction is what gets executed when a ScheduledActionDefinition is
// triggered (by its schedule). It is handed a message sender since scheduled
// actions run outside the normal message-response flow
type ScheduledAction func(sender RealTimeMessageSender)

// ActionDefinitionWithID holds an action definition along with its identifier string
type ActionDefinitionWithID struct {
	ActionDefinition
	id string
}

// String returns a friendly description of an ActionDefinition
func (a ActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Usage, a.Description)
}

// String returns a friendly description of a ScheduledActionDefinition
func (a ScheduledActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Definition, a.Description)
}
