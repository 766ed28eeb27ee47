package attendascot

import (
	"github.com/nlopes/slack"
)

// RealTimeMessageSender is implemented by any value that can send a new
// message to a channel outside the normal reaction flow (i.e. scheduled
// actions sending unprompted messages). The slight decoupling from slack.RTM
// keeps plugins easy to test
type RealTimeMessageSender interface {
	// SendNewMessage sends a new message to the given channel id
	SendNewMessage(message string, channelID string) (err error)
}

// rtmSender is the slack RTM backed implementation of RealTimeMessageSender
type rtmSender struct {
	rtm *slack.RTM
}

// newRealTimeMessageSender creates a sender backed by the slack RTM api
func newRealTimeMessageSender(rtm *slack.RTM) (s *rtmSender) {
	s = new(rtmSender)
	s.rtm = rtm

	return s
}

// SendNewMessage sends a new message using the slack RTM api
func (s *rtmSender) SendNewMessage(message string, channelID string) (err error) {
	m := s.rtm.NewOutgoingMessage(message, channelID)
	s.rtm.SendMessage(m)

	return nil
}
