package attendascot

import (
	"github.com/nlopes/slack"
)

// messageSender is implemented by any value that has the SendMessage method.
// Note that unlike RealTimeMessageSender, this one is synchronous and returns
// the information identifying the sent message.
//
// slack.Client implements this interface
type messageSender interface {
	SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error)
}

// messageUpdater is implemented by any value that has the UpdateMessage method.
//
// slack.Client implements this interface
type messageUpdater interface {
	UpdateMessage(channelID string, timestamp string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error)
}

// messageDeleter is implemented by any value that has the DeleteMessage method.
//
// slack.Client implements this interface
type messageDeleter interface {
	DeleteMessage(channelID string, timestamp string) (rChannelID string, rTimestamp string, err error)
}

// chatDriver encompasses the messageSender, messageUpdater and messageDeleter
// interfaces and is implemented by any value that has all of those methods
type chatDriver interface {
	messageDeleter
	messageSender
	messageUpdater
}

// selfInfoFinder is implemented by any value that can return the bot's own
// identity info.
//
// slack.RTM implements this interface
type selfInfoFinder interface {
	GetInfo() (user *slack.Info)
}
