// Package plugins provides a collection of plugins for instances
// of attendascot
package plugins

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alexandre-normand/figlet4go"
	"github.com/mitchellh/go-homedir"
	"github.com/nlopes/slack"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/api/global"

	"github.com/attendascot/attendascot"
	"github.com/attendascot/attendascot/attendance"
	"github.com/attendascot/attendascot/config"
	"github.com/attendascot/attendascot/schedule"
	"github.com/attendascot/attendascot/store"
	"github.com/attendascot/attendascot/store/csvlog"
)

// Configuration keys
const (
	markerKey         = "marker"
	channelIDKey      = "channelId"
	scanLimitKey      = "scanLimit"
	windowSizeKey     = "windowSize"
	summaryWeekdayKey = "summaryWeekday"
	summaryAtTimeKey  = "summaryAtTime"
	bannerFontPathKey = "bannerFontPath"
	bannerFontNameKey = "bannerFontName"
)

const (
	// AttendancePluginName holds identifying name for the attendance plugin
	AttendancePluginName = "attendance"

	defaultSummaryAtTime = "10:00"
	bannerText           = "Roll Call"
	timestampDisplay     = "2006-01-02 15:04"
)

var scanRegex = regexp.MustCompile("(?i)\\Ascan attendance\\s*(\\d*)\\s*\\z")
var leaderboardRegex = regexp.MustCompile("(?i)\\Aleaderboard\\s*\\z")
var dumpRegex = regexp.MustCompile("(?i)\\Adump attendance\\s*\\z")
var recentAuthorsRegex = regexp.MustCompile("(?i)\\Arecent authors\\s*(\\d*)\\s*\\z")
var showEmbedsRegex = regexp.MustCompile("(?i)\\Ashow embeds\\s*(\\d*)\\s*\\z")
var duplicatesRegex = regexp.MustCompile("(?i)\\Aduplicates\\s*\\z")
var meetingNotesRegex = regexp.MustCompile("(?i)\\Ameeting notes\\s*\\z")

// ChannelHistorian is implemented by any value that can fetch a channel's
// message history.
//
// slack.Client implements this interface
type ChannelHistorian interface {
	GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// Attendance holds the plugin data for the attendance plugin
type Attendance struct {
	attendascot.Plugin

	channelID string
	marker    string
	scanLimit int

	ledger  *attendance.Ledger
	window  *attendance.Window
	scanner *attendance.Scanner
	source  *slackMessageSource
	storer  store.StringStorer

	bannerRenderer *figlet4go.AsciiRender
	bannerOptions  *figlet4go.RenderOptions
}

// slackMessageSource adapts a slack channel's history to the scanner's
// view of messages, mapping attachments to embeds
type slackMessageSource struct {
	historian ChannelHistorian
	channelID string
}

// History fetches up to limit messages from the channel's history
func (s *slackMessageSource) History(limit int) (messages []attendance.Message, err error) {
	resp, err := s.historian.GetConversationHistory(&slack.GetConversationHistoryParameters{ChannelID: s.channelID, Limit: limit})
	if err != nil {
		return nil, err
	}

	messages = make([]attendance.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, attendance.Message{ID: m.Timestamp, AuthorName: authorName(&m.Msg), Embeds: toEmbeds(m.Attachments)})
	}

	return messages, nil
}

// authorName favors the bot username since event bots post under one rather
// than a real user id
func authorName(m *slack.Msg) (name string) {
	if m.Username != "" {
		return m.Username
	}

	return m.User
}

func toEmbeds(attachments []slack.Attachment) (embeds []attendance.Embed) {
	embeds = make([]attendance.Embed, 0, len(attachments))

	for _, att := range attachments {
		fields := make([]attendance.EmbedField, 0, len(att.Fields))
		for _, f := range att.Fields {
			fields = append(fields, attendance.EmbedField{Name: f.Title, Value: f.Value})
		}

		embeds = append(embeds, attendance.Embed{Title: att.Title, Description: att.Text, Fields: fields})
	}

	return embeds
}

// NewAttendance creates a new instance of the attendance plugin. The ledger
// is warmed from the previously persisted rows in the storer and every newly
// logged entry is written through to it
func NewAttendance(c *config.PluginConfig, historian ChannelHistorian, storer store.StringStorer) (a *Attendance, err error) {
	c.SetDefault(markerKey, attendance.DefaultMarker)
	c.SetDefault(scanLimitKey, attendance.DefaultScanLimit)
	c.SetDefault(windowSizeKey, attendance.DefaultWindowCapacity)
	c.SetDefault(summaryWeekdayKey, time.Monday.String())
	c.SetDefault(summaryAtTimeKey, defaultSummaryAtTime)

	if ok := c.IsSet(channelIDKey); !ok {
		return nil, fmt.Errorf("Missing [%s] configuration key for plugin [%s]", channelIDKey, AttendancePluginName)
	}

	a = new(Attendance)
	a.channelID = c.GetString(channelIDKey)
	a.marker = c.GetString(markerKey)
	a.scanLimit = c.GetInt(scanLimitKey)
	a.storer = storer
	a.ledger = attendance.NewLedger()
	a.window = attendance.NewWindow(c.GetInt(windowSizeKey))
	a.source = &slackMessageSource{historian: historian, channelID: a.channelID}

	err = a.warmLedger()
	if err != nil {
		return nil, err
	}

	err = a.setUpBanner(c)
	if err != nil {
		return nil, err
	}

	a.scanner = attendance.NewScanner(a.source, a.ledger, a.window,
		attendance.OptionMarker(a.marker),
		attendance.OptionLogger(a),
		attendance.OptionEntryListener(a.persistEntry),
		attendance.OptionTelemetry(AttendancePluginName, global.MeterProvider().Meter("attendascot")))

	commands := []attendascot.ActionDefinition{
		{
			Match:       matchRegex(scanRegex),
			Usage:       "scan attendance [limit]",
			Description: "Scan the channel history for event sign-ups and record attendance",
			Answer:      a.scanAttendance,
		},
		{
			Match:       matchRegex(leaderboardRegex),
			Usage:       "leaderboard",
			Description: "Show the attendance leaderboard over the recent events",
			Answer:      a.answerLeaderboard,
		},
		{
			Match:       matchRegex(dumpRegex),
			Usage:       "dump attendance",
			Description: "Dump every attendance entry on record",
			Answer:      a.answerDump,
		},
		{
			Match:       matchRegex(recentAuthorsRegex),
			Usage:       "recent authors [limit]",
			Description: "List the authors of the recent channel messages",
			Answer:      a.answerRecentAuthors,
		},
		{
			Match:       matchRegex(showEmbedsRegex),
			Usage:       "show embeds [limit]",
			Description: "Show the raw event embeds found in the recent history",
			Answer:      a.answerShowEmbeds,
		},
		{
			Hidden:      true,
			Match:       matchRegex(duplicatesRegex),
			Usage:       "duplicates",
			Description: "Report participants recorded under more than one spelling",
			Answer:      a.answerDuplicates,
		},
		{
			Match:       matchRegex(meetingNotesRegex),
			Usage:       "meeting notes",
			Description: "Draft meeting notes prefilled with the latest event's attendees",
			Answer:      a.answerMeetingNotes,
		},
	}

	weeklySummary := attendascot.ScheduledActionDefinition{
		Definition:  schedule.New().Every(c.GetString(summaryWeekdayKey)).AtTime(c.GetString(summaryAtTimeKey)).Build(),
		Description: "Post the weekly attendance leaderboard",
		Action:      a.postWeeklySummary,
	}

	a.Plugin = attendascot.Plugin{Name: AttendancePluginName, Commands: commands, HearActions: nil, ScheduledActions: []attendascot.ScheduledActionDefinition{weeklySummary}}

	return a, nil
}

// matchRegex builds a matcher from a regex on the normalized text
func matchRegex(r *regexp.Regexp) attendascot.Matcher {
	return func(m *attendascot.IncomingMessage) bool {
		return r.MatchString(m.NormalizedText)
	}
}

// Debugf forwards scanner debug output to the injected logger once the
// engine has set it up
func (a *Attendance) Debugf(format string, v ...interface{}) {
	if a.Logger != nil {
		a.Logger.Debugf(format, v...)
	}
}

// warmLedger restores previously persisted entries so rescans after a
// restart don't log (or persist) the same response twice
func (a *Attendance) warmLedger() (err error) {
	rows, err := a.storer.Scan()
	if err != nil {
		return errors.Wrap(err, "failed to load persisted attendance")
	}

	for _, row := range rows {
		e, err := csvlog.Unmarshal(row)
		if err != nil {
			return errors.Wrap(err, "failed to decode persisted attendance row")
		}

		a.ledger.Restore(e)
	}

	return nil
}

// persistEntry writes a newly logged entry through to the storer
func (a *Attendance) persistEntry(e attendance.Entry) {
	key, value := csvlog.Marshal(e)

	err := a.storer.PutString(key, value)
	if err != nil {
		a.Logger.Printf("[%s] Error persisting attendance entry [%s]: %v", AttendancePluginName, key, err)
	}
}

// setUpBanner loads the banner font when one is configured. Without a
// configured font path, the leaderboard renders without a banner
func (a *Attendance) setUpBanner(c *config.PluginConfig) (err error) {
	if ok := c.IsSet(bannerFontPathKey); !ok {
		return nil
	}

	fontPath, err := homedir.Expand(c.GetString(bannerFontPathKey))
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("[%s] can't resolve banner font path", AttendancePluginName))
	}

	renderer := figlet4go.NewAsciiRender()
	err = renderer.LoadFont(fontPath)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("[%s] can't load banner fonts from [%s]", AttendancePluginName, fontPath))
	}

	options := figlet4go.NewRenderOptions()
	if c.IsSet(bannerFontNameKey) {
		options.FontName = c.GetString(bannerFontNameKey)
	}

	a.bannerRenderer = renderer
	a.bannerOptions = options

	return nil
}

// scanAttendance runs one scan over the channel history and reports the counts
func (a *Attendance) scanAttendance(m *attendascot.IncomingMessage) *attendascot.Answer {
	limit := parseLimit(scanRegex, m.NormalizedText, a.scanLimit)

	res, err := a.scanner.Scan(limit)
	if err != nil {
		a.Logger.Printf("[%s] Error scanning channel [%s]: %v", AttendancePluginName, a.channelID, err)
		return &attendascot.Answer{Text: fmt.Sprintf(":warning: Couldn't read the channel history: %v", err)}
	}

	return &attendascot.Answer{Text: fmt.Sprintf("Scanned `%d` event messages and logged `%d` new entries (history limit `%d`)", res.Scanned, res.Logged, res.Limit)}
}

// answerLeaderboard formats the standings over the recent events window
func (a *Attendance) answerLeaderboard(m *attendascot.IncomingMessage) *attendascot.Answer {
	return &attendascot.Answer{Text: a.formatLeaderboard()}
}

func (a *Attendance) formatLeaderboard() (text string) {
	lb := attendance.BuildLeaderboard(a.window.AllParticipants())

	if len(lb.Ranked) == 0 && len(lb.DeclinedOnly) == 0 {
		return "No attendance on record yet. Try `scan attendance` first."
	}

	var b strings.Builder

	if banner := a.renderBanner(); banner != "" {
		fmt.Fprintf(&b, "```%s```\n", banner)
	}

	fmt.Fprintf(&b, "Attendance over the last %d events:\n```", a.window.Len())

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "\nRank\tName\tAccepted\tDeclined\n")
	for i, standing := range lb.Ranked {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", i+1, standing.DisplayName, standing.Accepted, standing.Declined)
	}
	w.Flush()
	b.Write(buf.Bytes())
	b.WriteString("```\n")

	if len(lb.DeclinedOnly) > 0 {
		fmt.Fprintf(&b, "Declined every time:\n")
		for _, standing := range lb.DeclinedOnly {
			fmt.Fprintf(&b, "\t• %s (`%d` declined)\n", standing.DisplayName, standing.Declined)
		}
	}

	fmt.Fprintf(&b, "Total unique responders: `%d`", lb.TotalResponders)

	return b.String()
}

// renderBanner renders the leaderboard banner when a font is configured
func (a *Attendance) renderBanner() (banner string) {
	if a.bannerRenderer == nil {
		return ""
	}

	banner, err := a.bannerRenderer.RenderOpts(bannerText, a.bannerOptions)
	if err != nil {
		a.Debugf("[%s] Error rendering banner, skipping: %v", AttendancePluginName, err)
		return ""
	}

	return banner
}

// answerDump lists every ledger entry in the order it was recorded
func (a *Attendance) answerDump(m *attendascot.IncomingMessage) *attendascot.Answer {
	entries := a.ledger.Entries()
	if len(entries) == 0 {
		return &attendascot.Answer{Text: "No attendance on record yet."}
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Logged\tName\tEvent\tResponse\n")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format(timestampDisplay), e.DisplayName, e.EventID, e.Response)
	}
	w.Flush()

	return &attendascot.Answer{Text: fmt.Sprintf("```%s```", buf.String()), Options: []attendascot.AnswerOption{attendascot.AnswerInThread()}}
}

// answerRecentAuthors lists who authored the recent channel messages
func (a *Attendance) answerRecentAuthors(m *attendascot.IncomingMessage) *attendascot.Answer {
	limit := parseLimit(recentAuthorsRegex, m.NormalizedText, a.scanLimit)

	messages, err := a.source.History(limit)
	if err != nil {
		a.Logger.Printf("[%s] Error fetching history for channel [%s]: %v", AttendancePluginName, a.channelID, err)
		return &attendascot.Answer{Text: fmt.Sprintf(":warning: Couldn't read the channel history: %v", err)}
	}

	if len(messages) == 0 {
		return &attendascot.Answer{Text: "No messages in the recent history."}
	}

	counts := make(map[string]int)
	ordered := make([]string, 0)
	for _, msg := range messages {
		name := msg.AuthorName
		if name == "" {
			name = "(unknown)"
		}

		if _, seen := counts[name]; !seen {
			ordered = append(ordered, name)
		}
		counts[name]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Authors of the last `%d` messages:\n", len(messages))
	for _, name := range ordered {
		fmt.Fprintf(&b, "\t• `%s` (%d)\n", name, counts[name])
	}

	return &attendascot.Answer{Text: b.String()}
}

// answerShowEmbeds shows the raw embeds of event messages in the recent
// history, useful to troubleshoot extraction
func (a *Attendance) answerShowEmbeds(m *attendascot.IncomingMessage) *attendascot.Answer {
	limit := parseLimit(showEmbedsRegex, m.NormalizedText, a.scanLimit)

	messages, err := a.source.History(limit)
	if err != nil {
		a.Logger.Printf("[%s] Error fetching history for channel [%s]: %v", AttendancePluginName, a.channelID, err)
		return &attendascot.Answer{Text: fmt.Sprintf(":warning: Couldn't read the channel history: %v", err)}
	}

	var b strings.Builder
	found := 0
	for _, msg := range messages {
		if !strings.Contains(msg.AuthorName, a.marker) {
			continue
		}

		for _, embed := range msg.Embeds {
			found++
			fmt.Fprintf(&b, "`%s` *%s*\n", msg.ID, embed.Title)
			for _, f := range embed.Fields {
				fmt.Fprintf(&b, "\t• `%s`: %s\n", f.Name, summarizeFieldValue(f.Value))
			}
		}
	}

	if found == 0 {
		return &attendascot.Answer{Text: fmt.Sprintf("No `%s` event embeds found in the last `%d` messages.", a.marker, limit)}
	}

	return &attendascot.Answer{Text: b.String(), Options: []attendascot.AnswerOption{attendascot.AnswerInThread()}}
}

// summarizeFieldValue reports the entry count rather than echoing the names
func summarizeFieldValue(value string) (summary string) {
	count := 0
	for _, line := range strings.Split(value, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}

	return fmt.Sprintf("%d entries", count)
}

// answerDuplicates reports participant keys recorded under more than one
// display spelling, usually a sign of inconsistent nicknames
func (a *Attendance) answerDuplicates(m *attendascot.IncomingMessage) *attendascot.Answer {
	spellings := make(map[attendance.ParticipantKey][]string)
	for _, e := range a.ledger.Entries() {
		if !contains(spellings[e.Key], e.DisplayName) {
			spellings[e.Key] = append(spellings[e.Key], e.DisplayName)
		}
	}

	keys := make([]string, 0)
	for key, names := range spellings {
		if len(names) > 1 {
			keys = append(keys, fmt.Sprintf("\t• `%s`: %s", key, strings.Join(names, ", ")))
		}
	}

	if len(keys) == 0 {
		return &attendascot.Answer{Text: "No duplicate spellings on record. :tada:"}
	}

	return &attendascot.Answer{Text: fmt.Sprintf("Participants recorded under more than one spelling:\n%s", strings.Join(keys, "\n"))}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

// answerMeetingNotes drafts meeting notes prefilled with the attendees of
// the most recent event on record
func (a *Attendance) answerMeetingNotes(m *attendascot.IncomingMessage) *attendascot.Answer {
	attendees := "_no event on record_"

	records := a.window.All()
	if len(records) > 0 {
		latest := records[len(records)-1]

		names := make([]string, 0, len(latest.Accepted))
		for _, p := range latest.Accepted {
			names = append(names, p.DisplayName)
		}

		if len(names) > 0 {
			attendees = strings.Join(names, ", ")
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Staff Meeting Notes - %s*\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "*Attendees:* %s\n", attendees)
	fmt.Fprintf(&b, "*Agenda:*\n\t• \n*Action items:*\n\t• ")

	return &attendascot.Answer{Text: b.String()}
}

// postWeeklySummary sends the leaderboard to the configured channel
func (a *Attendance) postWeeklySummary(sender attendascot.RealTimeMessageSender) {
	err := sender.SendNewMessage(a.formatLeaderboard(), a.channelID)
	if err != nil {
		a.Logger.Printf("[%s] Error sending weekly summary to channel [%s]: %v", AttendancePluginName, a.channelID, err)
	}
}

// parseLimit extracts the optional numeric limit of a command, falling back
// to the configured default
func parseLimit(r *regexp.Regexp, text string, defaultLimit int) (limit int) {
	match := r.FindStringSubmatch(text)
	if len(match) < 2 || strings.TrimSpace(match[1]) == "" {
		return defaultLimit
	}

	return cast.ToInt(strings.TrimSpace(match[1]))
}
