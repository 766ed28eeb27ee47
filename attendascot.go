package attendascot

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/hashicorp/golang-lru"
	"github.com/marcsantiago/gocron"
	"github.com/nlopes/slack"
	"github.com/spf13/viper"

	"github.com/attendascot/attendascot/config"
	"github.com/attendascot/attendascot/schedule"
)

// Attendascot represents what defines the bot (mostly, a name and its plugins)
type Attendascot struct {
	name                    string
	config                  *viper.Viper
	defaultAction           Answerer
	plugins                 []*Plugin
	triggeringMsgToResponse *lru.ARCCache

	// Internal state as an optimization when looping through all commands/hearActions
	commandsWithID    []ActionDefinitionWithID
	hearActionsWithID []ActionDefinitionWithID

	selfID   string
	selfName string

	closers []io.Closer

	log SLogger
}

// SlackMessageID holds the elements that form a unique message identifier for
// slack. Technically, slack also uses the workspace id as the first part of
// that unique identifier but since an instance of the bot only lives within a
// single workspace, that part is left out
type SlackMessageID struct {
	channelID string
	timestamp string
}

// OutgoingMessage holds a plugin generated answer along with its destination
// channel and the plugin identifier that generated it
type OutgoingMessage struct {
	*Answer

	channelID string

	// The identifier of the source of the outgoing message. The format being:
	// pluginName.c[commandIndex] (for a command) or pluginName.h[actionIndex]
	// (for a hear action)
	pluginIdentifier string
}

// responseStrategy defines how an answer is packaged in an OutgoingMessage
// according to the context of the triggering message
type responseStrategy func(m *IncomingMessage, a *Answer) *OutgoingMessage

// runDependencies holds all the runtime dependencies of the message
// processing loop so tests can inject fakes
type runDependencies struct {
	chatDriver     chatDriver
	userInfoFinder UserInfoFinder
	selfInfoFinder selfInfoFinder
	msgSender      RealTimeMessageSender
}

// Option defines an option for the bot
type Option func(*Attendascot)

// OptionLog sets the logger to use
func OptionLog(logger *log.Logger) Option {
	return func(s *Attendascot) {
		s.log = NewSLogger(logger, s.config.GetBool(config.DebugKey))
	}
}

// OptionLogfile sets a file to direct logs to
func OptionLogfile(logfile *os.File) Option {
	return func(s *Attendascot) {
		logger := log.New(logfile, "", log.Lshortfile|log.LstdFlags)
		s.log = NewSLogger(logger, s.config.GetBool(config.DebugKey))
	}
}

// New creates a new bot instance from a name and a viper configuration
func New(name string, v *viper.Viper, options ...Option) (bot *Attendascot, err error) {
	bot = new(Attendascot)

	bot.triggeringMsgToResponse, err = lru.NewARC(v.GetInt(config.ResponseCacheSizeKey))
	if err != nil {
		return nil, err
	}

	bot.name = name
	bot.config = v
	bot.defaultAction = func(m *IncomingMessage) *Answer {
		return &Answer{Text: fmt.Sprintf("I don't understand, ask me for \"%s\" to get a list of things I do", helpPluginName)}
	}
	bot.plugins = []*Plugin{}
	bot.log = NewSLogger(log.New(os.Stdout, fmt.Sprintf("%s: ", name), log.Lshortfile|log.LstdFlags), v.GetBool(config.DebugKey))

	for _, option := range options {
		option(bot)
	}

	return bot, nil
}

// RegisterPlugin registers a plugin with the bot engine. This should be
// invoked prior to calling Run
func (s *Attendascot) RegisterPlugin(p *Plugin) {
	s.plugins = append(s.plugins, p)
}

// registerCloser keeps track of a closer to invoke on Close
func (s *Attendascot) registerCloser(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Close closes all registered closers (i.e. plugin storers)
func (s *Attendascot) Close() (err error) {
	for _, c := range s.closers {
		cerr := c.Close()
		if cerr != nil {
			err = cerr
		}
	}

	return err
}

// Run starts the bot and loops until the process is interrupted
func (s *Attendascot) Run() (err error) {
	// Start by adding the help command now that we know all plugins have been registered
	helpPlugin := newHelpPlugin(s.name, VERSION, s.config, s.plugins)
	s.RegisterPlugin(&helpPlugin.Plugin)
	s.attachIdentifiersToPluginActions()

	api := slack.New(
		s.config.GetString(config.TokenKey),
		slack.OptionDebug(s.config.GetBool(config.DebugKey)),
		slack.OptionLog(log.New(os.Stdout, "slack: ", log.Lshortfile|log.LstdFlags)),
	)

	rtm := api.NewRTM()
	go rtm.ManageConnection()

	sender := newRealTimeMessageSender(rtm)

	userInfoFinder, err := NewCachingUserInfoFinder(s.config, api, s.log)
	if err != nil {
		return err
	}

	go s.watchForTerminationSignalToAbort(rtm)

	return s.runInternal(rtm.IncomingEvents, &runDependencies{chatDriver: api, userInfoFinder: userInfoFinder, selfInfoFinder: rtm, msgSender: sender})
}

// runInternal handles all incoming events and acts as the main loop. It will
// return when the events channel is closed
func (s *Attendascot) runInternal(events chan slack.RTMEvent, deps *runDependencies) (err error) {
	for msg := range events {
		switch e := msg.Data.(type) {
		case *slack.HelloEvent:
			// Ignore hello

		case *slack.ConnectedEvent:
			s.log.Printf("Connected (connection counter [%d])\n", e.ConnectionCount)

			s.cacheSelfIdentity(deps.selfInfoFinder)
			s.injectServicesToPlugins(deps.userInfoFinder, deps.msgSender)

			// Start scheduling of all plugins' scheduled actions
			go s.startActionScheduler(deps.msgSender)

		case *slack.MessageEvent:
			s.processMessageEvent(deps.chatDriver, e)

		case *slack.RTMError:
			s.log.Printf("Error: %s\n", e.Error())

		case *slack.InvalidAuthEvent:
			s.log.Printf("Invalid credentials\n")
			return nil

		default:
			// Ignoring other messages
		}
	}

	return nil
}

// injectServicesToPlugins injects services into all registered plugins
func (s *Attendascot) injectServicesToPlugins(userInfoFinder UserInfoFinder, sender RealTimeMessageSender) {
	for _, p := range s.plugins {
		p.Logger = s.log
		p.UserInfoFinder = userInfoFinder
		p.RealTimeMsgSender = sender
	}
}

// watchForTerminationSignalToAbort waits for a SIGTERM or SIGINT and closes the rtm's IncomingEvents channel to finish
// the main Run() loop and terminate cleanly. Note that this is meant to run in a go routine given that this is blocking
func (s *Attendascot) watchForTerminationSignalToAbort(rtm *slack.RTM) {
	tSignals := make(chan os.Signal, 1)
	// Register to be notified of termination signals so we can abort
	signal.Notify(tSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-tSignals

	s.log.Debugf("Received termination signal [%s], closing RTM's incoming events channel to terminate processing\n", sig)
	close(rtm.IncomingEvents)
}

// attachIdentifiersToPluginActions attaches an action identifier to every plugin action and sets them accordingly
// in the internal state of the bot
// The identifiers are generated the following way:
//  - pluginName.c[pluginIndexOfTheCommand] for commands
//  - pluginName.h[pluginIndexOfTheHearAction] for hear actions
//
// The identifier remains the same for the duration of an execution but might change if the bot instance
// reorders/replaces actions. Since the identifier isn't used for any durable functionality at the moment, this seems
// adequate.
func (s *Attendascot) attachIdentifiersToPluginActions() {
	s.commandsWithID = make([]ActionDefinitionWithID, 0)
	s.hearActionsWithID = make([]ActionDefinitionWithID, 0)

	for _, p := range s.plugins {
		for i, c := range p.Commands {
			s.commandsWithID = append(s.commandsWithID, ActionDefinitionWithID{ActionDefinition: c, id: fmt.Sprintf("%s.c[%d]", p.Name, i)})
		}

		for i, h := range p.HearActions {
			s.hearActionsWithID = append(s.hearActionsWithID, ActionDefinitionWithID{ActionDefinition: h, id: fmt.Sprintf("%s.h[%d]", p.Name, i)})
		}
	}
}

// cacheSelfIdentity gets "our" identity and keeps the selfID and selfName to avoid having to look it up every time
func (s *Attendascot) cacheSelfIdentity(finder selfInfoFinder) {
	s.selfID = finder.GetInfo().User.ID
	s.selfName = finder.GetInfo().User.Name

	s.log.Debugf("Caching self id [%s] and self name [%s]\n", s.selfID, s.selfName)
}

// startActionScheduler creates all ScheduledActionDefinition from all plugins and registers them with the scheduler
// Very importantly, it also starts the scheduler
func (s *Attendascot) startActionScheduler(sender RealTimeMessageSender) {
	timeLoc, err := config.GetTimeLocation(s.config)
	if err != nil {
		s.log.Printf("Error loading time location, scheduled actions won't run: %v\n", err)
		return
	}

	gocron.ChangeLoc(timeLoc)
	sc := gocron.NewScheduler()

	for _, p := range s.plugins {
		for _, sa := range p.ScheduledActions {
			j, err := schedule.NewJob(sc, sa.Definition)
			if err != nil {
				s.log.Printf("Error creating scheduled job for [%s]: %v\n", sa, err)
				continue
			}

			s.log.Debugf("Adding job [%v] to scheduler\n", j)
			err = j.Do(sa.Action, sender)
			if err != nil {
				s.log.Printf("Error registering scheduled action [%s]: %v\n", sa, err)
			}
		}
	}

	_, t := sc.NextRun()
	s.log.Debugf("Starting scheduler with first job scheduled at [%s]\n", t)

	<-sc.Start()
}

// processMessageEvent handles high-level processing of all slack message events.
func (s *Attendascot) processMessageEvent(driver chatDriver, msgEvent *slack.MessageEvent) {
	// reply_to is a field set to 1 sent by slack when a sent message has been acknowledged and should be considered
	// officially sent to others. Therefore, we ignore all of those since it's mostly for clients/UI to show status
	isReply := msgEvent.ReplyTo > 0

	s.log.Debugf("Processing event: %v\n", msgEvent)

	if !isReply && msgEvent.Type == "message" {
		slackMessageID := SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.Timestamp}

		if msgEvent.SubType == "message_deleted" {
			s.processDeletedMessage(driver, msgEvent)
		} else if msgEvent.SubType == "message_changed" {
			s.processUpdatedMessage(driver, msgEvent, slackMessageID)
		} else {
			s.processNewMessage(driver, msgEvent, slackMessageID)
		}
	}
}

// processUpdatedMessage processes changed messages. This is a more complicated scenario but it is handled by doing the following:
// 1. If the message isn't present in the triggering message cache, we process it as we would any other regular new message (check if it triggers an action and sends responses accordingly)
// 2. If the message is present in cache, we had pre-existing responses so we handle this by updating responses on a plugin action basis. A plugin action that isn't triggering anymore gets its previous
//    response deleted while a still triggering response will result in a message update. Newly triggered actions will be sent out as new messages.
// 3. The new state of responses replaces the previous one for the triggering message in the cache
func (s *Attendascot) processUpdatedMessage(driver chatDriver, msgEvent *slack.MessageEvent, incomingMessageID SlackMessageID) {
	editedSlackMessageID := SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.SubMessage.Timestamp}

	s.log.Debugf("Updated message: [%s], does cache contain it => [%t]\n", editedSlackMessageID, s.triggeringMsgToResponse.Contains(editedSlackMessageID))

	if cachedResponses, exists := s.triggeringMsgToResponse.Get(editedSlackMessageID); exists {
		responsesByAction := cachedResponses.(map[string]SlackMessageID)
		newResponseByActionID := make(map[string]SlackMessageID)

		outMsgs := s.routeMessage(combineIncomingMessageToHandle(msgEvent))
		s.log.Debugf("Detected %d existing responses to message [%s]\n", len(responsesByAction), editedSlackMessageID)

		for _, o := range outMsgs {
			// We had a previous response for that same plugin action so edit it instead of posting a new message
			if r, ok := responsesByAction[o.pluginIdentifier]; ok {
				s.log.Debugf("Trying to update response at [%s] with message [%s]\n", r, o.Text)

				rID, err := s.updateExistingMessage(driver, r, o)
				if err != nil {
					s.log.Printf("Unable to update message [%s] to triggering message [%s]: %v\n", r, editedSlackMessageID, err)
				} else {
					// Add the new updated message to the new responses
					newResponseByActionID[o.pluginIdentifier] = rID

					// Remove entries for plugin actions as we process them so that we can detect afterwards if a plugin isn't triggering
					// anymore (to delete those responses).
					delete(responsesByAction, o.pluginIdentifier)
				}
			} else {
				// It's a new response for that action so post it as a new message
				rID, err := s.sendNewMessage(driver, o, incomingMessageID.timestamp)
				if err != nil {
					s.log.Printf("Unable to send new message to updated message [%s]: %v\n", editedSlackMessageID, err)
				} else {
					newResponseByActionID[o.pluginIdentifier] = rID
				}
			}
		}

		// Delete any previous triggered responses that aren't triggering anymore
		for _, r := range responsesByAction {
			driver.DeleteMessage(r.channelID, r.timestamp)
		}

		// Since the updated message now has new responses, update the entry with those or remove if no actions are triggered
		if len(newResponseByActionID) > 0 {
			s.log.Debugf("Updating responses to edited message [%s]\n", editedSlackMessageID)
			s.triggeringMsgToResponse.Add(editedSlackMessageID, newResponseByActionID)
		} else {
			s.log.Debugf("Deleting entry for edited message [%s] since no more triggered response\n", editedSlackMessageID)
			s.triggeringMsgToResponse.Remove(editedSlackMessageID)
		}
	} else {
		outMsgs := s.routeMessage(combineIncomingMessageToHandle(msgEvent))
		s.sendOutgoingMessages(driver, incomingMessageID, outMsgs)
	}
}

// processDeletedMessage handles a deleted message in order to delete any
// previous responses triggered by that now inexistant message
func (s *Attendascot) processDeletedMessage(deleter messageDeleter, msgEvent *slack.MessageEvent) {
	deletedMessageID := SlackMessageID{channelID: msgEvent.Channel, timestamp: msgEvent.DeletedTimestamp}

	s.log.Debugf("Message deleted: [%s] and cache contains: [%v]\n", deletedMessageID, s.triggeringMsgToResponse.Keys())

	if existingResponses, exists := s.triggeringMsgToResponse.Get(deletedMessageID); exists {
		byAction := existingResponses.(map[string]SlackMessageID)

		for _, v := range byAction {
			// Delete existing response since the triggering message was deleted
			_, _, err := deleter.DeleteMessage(v.channelID, v.timestamp)
			if err != nil {
				s.log.Printf("Error deleting existing response to triggering message [%s]: %s: %v\n", deletedMessageID, v, err)
			}
		}

		s.triggeringMsgToResponse.Remove(deletedMessageID)
	}
}

// processNewMessage handles a regular new message and sends any triggered response
func (s *Attendascot) processNewMessage(driver chatDriver, msgEvent *slack.MessageEvent, incomingMessageID SlackMessageID) {
	outMsgs := s.routeMessage(&msgEvent.Msg)

	s.sendOutgoingMessages(driver, incomingMessageID, outMsgs)
}

// sendOutgoingMessages sends out any triggered plugin responses and keeps track of those in the internal cache
func (s *Attendascot) sendOutgoingMessages(driver chatDriver, incomingMessageID SlackMessageID, outMsgs []*OutgoingMessage) {
	newResponseByActionID := make(map[string]SlackMessageID)

	for _, o := range outMsgs {
		// Send the message and keep track of our response in cache to be able to update it as needed later
		rID, err := s.sendNewMessage(driver, o, incomingMessageID.timestamp)
		if err != nil {
			s.log.Printf("Unable to send new message triggered by [%s]: %v\n", incomingMessageID, err)
		} else {
			newResponseByActionID[o.pluginIdentifier] = rID
		}
	}

	if len(newResponseByActionID) > 0 {
		s.log.Debugf("Adding responses to triggering message [%s]: %v\n", incomingMessageID, newResponseByActionID)

		s.triggeringMsgToResponse.Add(incomingMessageID, newResponseByActionID)
	}
}

// sendNewMessage sends a new outgoing message and waits for the response to return that message's identifier
func (s *Attendascot) sendNewMessage(sender messageSender, o *OutgoingMessage, defaultThreadTS string) (rID SlackMessageID, err error) {
	options := []slack.MsgOption{slack.MsgOptionText(o.Text, false), slack.MsgOptionUser(s.selfID), slack.MsgOptionAsUser(true)}
	options = append(options, s.resolveThreadingOpts(ApplyAnswerOpts(o.Options...), defaultThreadTS)...)

	channelID, newOutgoingMsgTimestamp, _, err := sender.SendMessage(o.channelID, options...)
	rID = SlackMessageID{channelID: channelID, timestamp: newOutgoingMsgTimestamp}

	return rID, err
}

// resolveThreadingOpts combines an answer's own threading options with the
// global reply behavior configuration. Explicit answer options always win
// over the configured defaults
func (s *Attendascot) resolveThreadingOpts(sendOpts map[string]string, defaultThreadTS string) (options []slack.MsgOption) {
	options = make([]slack.MsgOption, 0)

	threaded := s.config.GetBool(config.ThreadedRepliesKey)
	if v, ok := sendOpts[ThreadedReplyOpt]; ok {
		threaded = v == "true"
	}

	if !threaded {
		return options
	}

	threadTS := defaultThreadTS
	if v, ok := sendOpts[ThreadTimestamp]; ok {
		threadTS = v
	}

	options = append(options, slack.MsgOptionTS(threadTS))

	broadcast := s.config.GetBool(config.BroadcastThreadedRepliesKey)
	if v, ok := sendOpts[BroadcastOpt]; ok {
		broadcast = v == "true"
	}

	if broadcast {
		options = append(options, slack.MsgOptionBroadcast())
	}

	return options
}

// updateExistingMessage updates an existing message with the content of a newly triggered OutgoingMessage
func (s *Attendascot) updateExistingMessage(updater messageUpdater, r SlackMessageID, o *OutgoingMessage) (rID SlackMessageID, err error) {
	channelID, newOutgoingMsgTimestamp, _, err := updater.UpdateMessage(r.channelID, r.timestamp, slack.MsgOptionText(o.Text, false), slack.MsgOptionUser(s.selfID), slack.MsgOptionAsUser(true))
	rID = SlackMessageID{channelID: channelID, timestamp: newOutgoingMsgTimestamp}

	return rID, err
}

// combineIncomingMessageToHandle combines a main message and its sub message to form what would be an intuitive message to process for
// a bot. That is, a message with the new updated text (in the case of a changed message) along with the channel being the one where the message
// is visible and with the user correctly set to the person who updated/sent the message
func combineIncomingMessageToHandle(messageEvent *slack.MessageEvent) (combinedMessage *slack.Msg) {
	if messageEvent.SubType == "message_changed" {
		combined := messageEvent.Msg
		combined.Text = messageEvent.SubMessage.Text
		combined.User = messageEvent.SubMessage.User
		return &combined
	}

	return &messageEvent.Msg
}

// routeMessage handles routing the message to commands or hear actions according to the context
// The rules are the following:
// 	1. If the message is on a channel with a direct mention to us (@name), we route to commands
// 	2. If the message is a direct message to us, we route to commands
// 	3. If the message is on a channel without mention (regular conversation), we route to hear actions
func (s *Attendascot) routeMessage(m *slack.Msg) (responses []*OutgoingMessage) {
	// Build regex to detect if message was directed at "us"
	r, _ := regexp.Compile("^(<@" + s.selfID + ">|@?" + s.selfName + "):? (.+)")
	matches := r.FindStringSubmatch(m.Text)

	responses = make([]*OutgoingMessage, 0)

	// Ignore messages sent by "us"
	if m.User == s.selfID || m.BotID == s.selfID {
		s.log.Debugf("Ignoring message from user [%s] because that's \"us\" [%s]\n", m.User, s.selfID)

		return responses
	}

	if len(matches) == 3 {
		im := &IncomingMessage{NormalizedText: matches[2], Msg: *m}
		responses = append(responses, handleCommand(s.defaultAction, s.commandsWithID, im, reply)...)
	} else if len(m.Channel) > 0 && m.Channel[0] == 'D' {
		im := &IncomingMessage{NormalizedText: m.Text, Msg: *m}
		responses = append(responses, handleCommand(s.defaultAction, s.commandsWithID, im, directReply)...)
	} else {
		im := &IncomingMessage{NormalizedText: m.Text, Msg: *m}
		responses = append(responses, handleMessage(s.hearActionsWithID, im, send)...)
	}

	return responses
}

// handleCommand handles a command by trying a match with all known actions. If no match is found, the default action is invoked
// Note that in the case of the default action being executed, it is identified by the "default" plugin identifier
func handleCommand(defaultAnswer Answerer, actions []ActionDefinitionWithID, m *IncomingMessage, rs responseStrategy) (outMsgs []*OutgoingMessage) {
	outMsgs = handleMessage(actions, m, rs)
	if len(outMsgs) == 0 {
		answer := defaultAnswer(m)

		outMsg := rs(m, answer)
		outMsg.pluginIdentifier = "default"
		return []*OutgoingMessage{outMsg}
	}

	return outMsgs
}

// handleMessage loops over all action definitions and invokes the action if the incoming message matches
// Note that more than one action can be triggered during the processing of a single message
func handleMessage(actions []ActionDefinitionWithID, m *IncomingMessage, rs responseStrategy) (outMsgs []*OutgoingMessage) {
	outMsgs = make([]*OutgoingMessage, 0)

	for _, action := range actions {
		if action.Match(m) {
			answer := action.Answer(m)

			if answer != nil && answer.Text != "" {
				outMsg := rs(m, answer)
				outMsg.pluginIdentifier = action.id

				outMsgs = append(outMsgs, outMsg)
			}
		}
	}

	return outMsgs
}

// reply packages an answer addressed to the user (using @user) who sent the message on the channel it was sent on
func reply(m *IncomingMessage, a *Answer) *OutgoingMessage {
	addressed := *a
	addressed.Text = fmt.Sprintf("<@%s>: %s", m.User, a.Text)

	return &OutgoingMessage{Answer: &addressed, channelID: m.Channel}
}

// directReply packages an answer to a direct message (which is internally a channel id for slack). It is essentially
// the same as send but it's kept separate for clarity
func directReply(m *IncomingMessage, a *Answer) *OutgoingMessage {
	return send(m, a)
}

// send packages an answer to be sent on the same channel as received (which can be a direct message since
// slack internally uses a channel id for private conversations)
func send(m *IncomingMessage, a *Answer) *OutgoingMessage {
	return &OutgoingMessage{Answer: a, channelID: m.Channel}
}
