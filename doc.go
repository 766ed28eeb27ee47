/*
Package attendascot provides the building blocks of a slack bot that keeps
track of event attendance announced by an event-management bot in a channel.

It is extendable via plugins that can combine commands, hear actions (listeners) as well
as scheduled actions. It also supports updating of triggered responses on message updates as well
as deleting triggered responses when the triggering messages are deleted by users.

Plugins also have access to services injected on startup by attendascot such as:
 - UserInfoFinder: To query user info
 - SLogger: To log debug/info statements
 - RealTimeMessageSender: To send unmanaged real time messages outside the normal reaction flow (i.e. for sending many messages or sending via a scheduled action)

Example code:

	package main

	import (
		"log"

		"github.com/attendascot/attendascot"
		"github.com/attendascot/attendascot/config"
		"github.com/attendascot/attendascot/plugins"
		"github.com/nlopes/slack"
	)

	func main() {
		// TODO: Parse command-line, initialize viper and instantiate the Storer implementation backing the attendance plugin

		client := slack.New(v.GetString(config.TokenKey))

		pc, err := config.GetPluginConfig(v, plugins.AttendancePluginName)
		if err != nil {
			log.Fatal(err)
		}

		att, err := plugins.NewAttendance(pc, client, storer)

		bot, err := attendascot.NewBot("attendascot", v).
			WithPluginCloserErr(storer, &att.Plugin, err).
			WithPlugin(&plugins.NewVersioner("attendascot", attendascot.VERSION).Plugin).
			Build()
		defer bot.Close()

		if err != nil {
			log.Fatal(err)
		}

		err = bot.Run()
		if err != nil {
			log.Fatal(err)
		}
	}
*/
package attendascot
