package attendance

import (
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/api/metric"
)

const (
	// DefaultMarker is the default author-name marker identifying messages
	// posted by the event-management bot
	DefaultMarker = "Apollo"

	// DefaultScanLimit is the number of history messages scanned when the
	// caller doesn't ask for a specific count
	DefaultScanLimit = 18

	// MaxScanLimit caps how many history messages a single scan may request
	MaxScanLimit = 100
)

// Message is the scanner's view of one chat message: who authored it, its
// unique monotonic identifier and the embeds attached to it
type Message struct {
	ID         string
	AuthorName string
	Embeds     []Embed
}

// MessageSource provides a bounded window of chat history, most recent
// messages first (or whatever order the platform defines; the scanner
// attaches no meaning to it). Timeouts and cancellation of the underlying
// fetch are the source's concern
type MessageSource interface {
	History(limit int) (messages []Message, err error)
}

// Logger is the minimal logging interface the scanner uses for debug output
type Logger interface {
	Debugf(format string, v ...interface{})
}

// EntryListener is notified of every entry newly recorded by a scan, in
// logging order. Used by persistence collaborators to write entries through
type EntryListener func(e Entry)

// Scanner drives one pass over a history window: it extracts participant
// responses from every marker-authored message, records each event in the
// window and logs every (event, participant, response) fact to the ledger
// exactly once
type Scanner struct {
	source    MessageSource
	extractor *Extractor
	ledger    *Ledger
	window    *Window
	marker    string
	logger    Logger
	listener  EntryListener
	ins       *instrumenter
}

// ScannerOption defines an option applied to a new Scanner
type ScannerOption func(s *Scanner)

// OptionMarker overrides the author-name marker (case-sensitive substring
// match) identifying event bot messages
func OptionMarker(marker string) ScannerOption {
	return func(s *Scanner) {
		s.marker = marker
	}
}

// OptionExtractor overrides the embed extractor
func OptionExtractor(e *Extractor) ScannerOption {
	return func(s *Scanner) {
		s.extractor = e
	}
}

// OptionLogger attaches a debug logger to the scanner
func OptionLogger(l Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = l
	}
}

// OptionEntryListener attaches a listener invoked for every newly logged entry
func OptionEntryListener(listener EntryListener) ScannerOption {
	return func(s *Scanner) {
		s.listener = listener
	}
}

// OptionTelemetry enables scan metrics reporting on the given meter
func OptionTelemetry(appName string, meter metric.Meter) ScannerOption {
	return func(s *Scanner) {
		s.ins = newInstrumenter(appName, meter)
	}
}

// NewScanner creates a Scanner over the given source writing to the given
// ledger and window
func NewScanner(source MessageSource, ledger *Ledger, window *Window, opts ...ScannerOption) (s *Scanner) {
	s = new(Scanner)
	s.source = source
	s.ledger = ledger
	s.window = window
	s.extractor = NewExtractor()
	s.marker = DefaultMarker
	s.logger = nopLogger{}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScanResult summarizes one scan: how many event bot messages were seen, how
// many new ledger entries were recorded and the effective history limit used
type ScanResult struct {
	Scanned int
	Logged  int
	Limit   int
}

// Scan fetches up to limit history messages and processes them sequentially.
// A non-positive limit falls back to DefaultScanLimit and anything above
// MaxScanLimit is clamped. Re-scanning messages already processed is safe:
// the ledger drops duplicate entries so the result reports zero logged.
// A source returning no messages isn't an error and yields a zero result
func (s *Scanner) Scan(limit int) (res ScanResult, err error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}

	if limit > MaxScanLimit {
		limit = MaxScanLimit
	}

	res.Limit = limit

	d := measure(func() {
		err = s.scan(limit, &res)
	})

	if err != nil {
		return res, err
	}

	if s.ins != nil {
		s.ins.reportScan(res, d)
	}

	s.logger.Debugf("scan complete: %d scanned, %d logged (limit %d) in %v", res.Scanned, res.Logged, res.Limit, d)
	return res, nil
}

func (s *Scanner) scan(limit int, res *ScanResult) (err error) {
	messages, err := s.source.History(limit)
	if err != nil {
		return errors.Wrap(err, "failed to fetch message history")
	}

	for _, m := range messages {
		if !strings.Contains(m.AuthorName, s.marker) {
			continue
		}

		res.Scanned++

		if len(m.Embeds) == 0 {
			continue
		}

		// all embeds of a message fold into a single event record since the
		// window keys records by message id
		acceptedRaw := make([]string, 0)
		declinedRaw := make([]string, 0)
		for _, embed := range m.Embeds {
			a, d := s.extractor.Extract(embed)
			acceptedRaw = append(acceptedRaw, a...)
			declinedRaw = append(declinedRaw, d...)
		}

		rec := NewEventRecord(m.ID, acceptedRaw, declinedRaw)
		s.window.Add(rec)

		res.Logged += s.logParticipants(rec.EventID, rec.Accepted, ResponseAccepted)
		res.Logged += s.logParticipants(rec.EventID, rec.Declined, ResponseDeclined)
	}

	return nil
}

// logParticipants records one entry per participant, counting only the ones
// not previously logged. Within a message, accepted entries are always
// written before declined ones, in field order
func (s *Scanner) logParticipants(eventID string, participants []Participant, response string) (logged int) {
	for _, p := range participants {
		e := NewEntry(p.Key, p.DisplayName, eventID, response)

		if s.ledger.Restore(e) {
			logged++

			if s.listener != nil {
				s.listener(e)
			}
		} else {
			s.logger.Debugf("skipping already logged entry [%s]", e.PseudoID())
		}
	}

	return logged
}

type nopLogger struct {
}

func (nopLogger) Debugf(format string, v ...interface{}) {
}
