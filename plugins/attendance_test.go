package plugins_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nlopes/slack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendascot/attendascot"
	"github.com/attendascot/attendascot/attendance"
	"github.com/attendascot/attendascot/plugins"
	"github.com/attendascot/attendascot/store/csvlog"
	"github.com/attendascot/attendascot/test/assertanswer"
	"github.com/attendascot/attendascot/test/assertplugin"
	"github.com/attendascot/attendascot/test/capture"
)

type channelHistorian struct {
	messages  []slack.Message
	err       error
	lastLimit int
}

func (h *channelHistorian) GetConversationHistory(params *slack.GetConversationHistoryParameters) (resp *slack.GetConversationHistoryResponse, err error) {
	h.lastLimit = params.Limit

	if h.err != nil {
		return nil, h.err
	}

	return &slack.GetConversationHistoryResponse{Messages: h.messages}, nil
}

type memoryStorer struct {
	data map[string]string
}

func newMemoryStorer() (ms *memoryStorer) {
	ms = new(memoryStorer)
	ms.data = make(map[string]string)
	return ms
}

func (ms *memoryStorer) GetString(key string) (value string, err error) {
	v, ok := ms.data[key]
	if !ok {
		return "", fmt.Errorf("%s not found", key)
	}

	return v, nil
}

func (ms *memoryStorer) PutString(key string, value string) (err error) {
	ms.data[key] = value
	return nil
}

func (ms *memoryStorer) DeleteString(key string) (err error) {
	delete(ms.data, key)
	return nil
}

func (ms *memoryStorer) Scan() (entries map[string]string, err error) {
	entries = make(map[string]string)
	for k, v := range ms.data {
		entries[k] = v
	}

	return entries, nil
}

func (ms *memoryStorer) Close() (err error) {
	return nil
}

func eventMessage(ts string, title string, accepted []string, declined []string) (m slack.Message) {
	fields := make([]slack.AttachmentField, 0)
	if len(accepted) > 0 {
		fields = append(fields, slack.AttachmentField{Title: fmt.Sprintf("✅ Accepted (%d)", len(accepted)), Value: bulleted(accepted)})
	}

	if len(declined) > 0 {
		fields = append(fields, slack.AttachmentField{Title: fmt.Sprintf("❌ Declined (%d)", len(declined)), Value: bulleted(declined)})
	}

	m.Timestamp = ts
	m.Username = "Apollo#2256"
	m.Attachments = []slack.Attachment{{Title: title, Fields: fields}}
	return m
}

func bulleted(names []string) (value string) {
	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, "- "+n)
	}

	return strings.Join(lines, "\n")
}

func chatterMessage(ts string, userID string, text string) (m slack.Message) {
	m.Timestamp = ts
	m.User = userID
	m.Text = text
	return m
}

func testHistory() (messages []slack.Message) {
	return []slack.Message{
		eventMessage("1001.000000", "Tuesday Scrimmage", []string{"Jane", "Bob"}, []string{"Ray"}),
		chatterMessage("1001.500000", "U123", "see you all there"),
		eventMessage("1002.000000", "Thursday Practice", []string{"Jane", "Alice"}, nil),
	}
}

func newTestAttendance(t *testing.T, historian plugins.ChannelHistorian, storer *memoryStorer) (a *plugins.Attendance) {
	v := viper.New()
	v.Set("channelId", "C123")

	a, err := plugins.NewAttendance(v, historian, storer)
	require.NoError(t, err)

	return a
}

func TestNewAttendanceRequiresChannelID(t *testing.T) {
	_, err := plugins.NewAttendance(viper.New(), &channelHistorian{}, newMemoryStorer())

	assert.EqualError(t, err, "Missing [channelId] configuration key for plugin [attendance]")
}

func TestScanRecordsNewEntries(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	storer := newMemoryStorer()
	a := newTestAttendance(t, historian, storer)

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "Scanned `2` event messages and logged `5` new entries (history limit `18`)")
	})

	assert.Equal(t, 18, historian.lastLimit)

	assert.Contains(t, storer.data, "1001.000000-jane")
	assert.Contains(t, storer.data, "1001.000000-bob")
	assert.Contains(t, storer.data, "1001.000000-ray-declined")
	assert.Contains(t, storer.data, "1002.000000-jane")
	assert.Contains(t, storer.data, "1002.000000-alice")
}

func TestRescanLogsNothingNew(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	storer := newMemoryStorer()
	a := newTestAttendance(t, historian, storer)

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "Scanned `2` event messages and logged `0` new entries (history limit `18`)")
	})

	assert.Len(t, storer.data, 5)
}

func TestScanWithExplicitLimit(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance 50"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "(history limit `50`)")
	})

	assert.Equal(t, 50, historian.lastLimit)
}

func TestScanReportsHistoryError(t *testing.T) {
	historian := &channelHistorian{err: fmt.Errorf("channel_not_found")}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], ":warning: Couldn't read the channel history:")
	})
}

func TestLeaderboardBeforeAnyScan(t *testing.T) {
	a := newTestAttendance(t, &channelHistorian{}, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> leaderboard"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "No attendance on record yet. Try `scan attendance` first.")
	})
}

func TestLeaderboardAfterScan(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> leaderboard"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		valid := assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "Attendance over the last 2 events:") &&
			assertanswer.HasTextContaining(t, answers[0], "Declined every time:") &&
			assertanswer.HasTextContaining(t, answers[0], "Ray (`1` declined)") &&
			assertanswer.HasTextContaining(t, answers[0], "Total unique responders: `4`")

		if valid {
			text := answers[0].Text
			assert.Less(t, strings.Index(text, "Jane"), strings.Index(text, "Alice"), "Jane has the most accepted responses and should rank first")
			assert.Less(t, strings.Index(text, "Alice"), strings.Index(text, "Bob"), "ties should break on ascending display name")
		}

		return valid
	})
}

func TestWarmStartPreventsRelogging(t *testing.T) {
	storer := newMemoryStorer()
	for _, e := range []attendance.Entry{
		attendance.NewEntry("jane", "Jane", "1001.000000", attendance.ResponseAccepted),
		attendance.NewEntry("bob", "Bob", "1001.000000", attendance.ResponseAccepted),
		attendance.NewEntry("ray", "Ray", "1001.000000", attendance.ResponseDeclined),
		attendance.NewEntry("jane", "Jane", "1002.000000", attendance.ResponseAccepted),
		attendance.NewEntry("alice", "Alice", "1002.000000", attendance.ResponseAccepted),
	} {
		key, value := csvlog.Marshal(e)
		require.NoError(t, storer.PutString(key, value))
	}

	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, storer)

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "Scanned `2` event messages and logged `0` new entries (history limit `18`)")
	})

	assert.Len(t, storer.data, 5)
}

func TestDumpAttendance(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> dump attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "Jane") &&
			assertanswer.HasTextContaining(t, answers[0], "1001.000000") &&
			assertanswer.HasTextContaining(t, answers[0], "declined") &&
			assertanswer.HasOptions(t, answers[0], assertanswer.ResolvedAnswerOption{Key: attendascot.ThreadedReplyOpt, Value: "true"})
	})
}

func TestDumpAttendanceOnEmptyLedger(t *testing.T) {
	a := newTestAttendance(t, &channelHistorian{}, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> dump attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "No attendance on record yet.")
	})
}

func TestRecentAuthors(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> recent authors"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "Authors of the last `3` messages:\n\t• `Apollo#2256` (2)\n\t• `U123` (1)\n")
	})
}

func TestShowEmbeds(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> show embeds"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "`1001.000000` *Tuesday Scrimmage*") &&
			assertanswer.HasTextContaining(t, answers[0], "`✅ Accepted (2)`: 2 entries") &&
			assertanswer.HasTextContaining(t, answers[0], "`❌ Declined (1)`: 1 entries") &&
			assertanswer.HasOptions(t, answers[0], assertanswer.ResolvedAnswerOption{Key: attendascot.ThreadedReplyOpt, Value: "true"})
	})
}

func TestShowEmbedsWithNoEventMessages(t *testing.T) {
	historian := &channelHistorian{messages: []slack.Message{chatterMessage("1001.500000", "U123", "quiet week")}}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> show embeds"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "No `Apollo` event embeds found in the last `18` messages.")
	})
}

func TestDuplicatesWithConsistentSpellings(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> duplicates"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasText(t, answers[0], "No duplicate spellings on record. :tada:")
	})
}

func TestDuplicatesReportsInconsistentSpellings(t *testing.T) {
	historian := &channelHistorian{messages: []slack.Message{
		eventMessage("1001.000000", "Tuesday Scrimmage", []string{"PFC Jane"}, nil),
		eventMessage("1002.000000", "Thursday Practice", []string{"pfc. Jane"}, nil),
	}}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> duplicates"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "Participants recorded under more than one spelling:") &&
			assertanswer.HasTextContaining(t, answers[0], "`pfc jane`: PFC Jane, pfc. Jane")
	})
}

func TestMeetingNotes(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> meeting notes"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "*Attendees:* _no event on record_")
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> meeting notes"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1) &&
			assertanswer.HasTextContaining(t, answers[0], "*Staff Meeting Notes - ") &&
			assertanswer.HasTextContaining(t, answers[0], "*Attendees:* Jane, Alice") &&
			assertanswer.HasTextContaining(t, answers[0], "*Agenda:*")
	})
}

func TestWeeklySummaryPostsToChannel(t *testing.T) {
	historian := &channelHistorian{messages: testHistory()}
	a := newTestAttendance(t, historian, newMemoryStorer())

	assertplugin := assertplugin.New("bot")

	assertplugin.Answers(t, &a.Plugin, &slack.Msg{Text: "<@bot> scan attendance"}, func(t *testing.T, answers []*attendascot.Answer) bool {
		return assert.Len(t, answers, 1)
	})

	require.Len(t, a.ScheduledActions, 1)
	assert.Equal(t, "Every Monday at 10:00", a.ScheduledActions[0].Definition.String())

	sender := capture.NewRealTimeSender()
	a.ScheduledActions[0].Action(sender)

	require.Len(t, sender.SentMessages["C123"], 1)
	assert.Contains(t, sender.SentMessages["C123"][0], "Total unique responders: `4`")
}
