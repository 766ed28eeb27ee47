// Package csvlog provides an append-only csv backed store.StringStorer for
// attendance rows along with the csv codec for attendance entries. Rows are
// appended to one file per calendar month so logs stay small and easy to
// hand off to spreadsheet users
package csvlog

import (
	"encoding/csv"
	"fmt"
	"github.com/attendascot/attendascot/attendance"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"Timestamp", "UserID", "Username", "EventID", "Response"}

// CSVLog holds a log name and the directory its monthly files live in
type CSVLog struct {
	Name  string
	path  string
	mutex sync.Mutex
}

// New creates a CSVLog writing to storagePath. The directory is created if
// it doesn't exist
func New(name string, storagePath string) (c *CSVLog, err error) {
	// Expand '~' as the full home directory path if appropriate
	path, err := homedir.Expand(storagePath)
	if err != nil {
		return nil, err
	}

	err = os.MkdirAll(path, 0755)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to create csv log directory [%s]", path))
	}

	c = new(CSVLog)
	c.Name = name
	c.path = path

	return c, nil
}

// Marshal encodes an attendance entry as a single csv row along with its
// pseudo id, suitable for a StringStorer's PutString
func Marshal(e attendance.Entry) (key string, value string) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write(encodeRecord(e))
	w.Flush()

	return e.PseudoID(), strings.TrimRight(b.String(), "\n")
}

// Unmarshal decodes a csv row back into an attendance entry
func Unmarshal(value string) (e attendance.Entry, err error) {
	r := csv.NewReader(strings.NewReader(value))
	record, err := r.Read()
	if err != nil {
		return e, errors.Wrap(err, "invalid attendance row")
	}

	return decodeRecord(record)
}

func encodeRecord(e attendance.Entry) (record []string) {
	return []string{e.CreatedAt.Format(timestampLayout), string(e.Key), e.DisplayName, e.EventID, e.Response}
}

func decodeRecord(record []string) (e attendance.Entry, err error) {
	if len(record) != len(header) {
		return e, errors.Errorf("invalid attendance row, expected %d fields but got %d", len(header), len(record))
	}

	ts, err := time.ParseInLocation(timestampLayout, record[0], time.Local)
	if err != nil {
		return e, errors.Wrap(err, "invalid attendance row timestamp")
	}

	e = attendance.Entry{Key: attendance.ParticipantKey(record[1]), DisplayName: record[2], EventID: record[3], Response: record[4], CreatedAt: ts}
	return e, nil
}

// PutString appends the attendance row to the monthly file matching its
// timestamp. The key is not stored, it is derived from the row on Scan
func (c *CSVLog) PutString(key string, value string) (err error) {
	e, err := Unmarshal(value)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	name := c.fileName(e.CreatedAt)
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to open csv log [%s]", name))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to stat csv log [%s]", name))
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(header)
	}

	w.Write(encodeRecord(e))
	w.Flush()

	return w.Error()
}

// GetString retrieves the row with the given pseudo id by scanning the log files
func (c *CSVLog) GetString(key string) (value string, err error) {
	entries, err := c.Scan()
	if err != nil {
		return "", err
	}

	value, ok := entries[key]
	if !ok {
		return "", errors.Errorf("attendance row not found for key [%s]", key)
	}

	return value, nil
}

// DeleteString is unsupported, the log is append-only
func (c *CSVLog) DeleteString(key string) (err error) {
	return errors.New("delete is not supported on an append-only csv log")
}

// Scan reads every monthly file and returns all rows keyed by pseudo id.
// When a pseudo id appears in more than one row, the first row encountered
// wins to match the write-once ledger semantics
func (c *CSVLog) Scan() (entries map[string]string, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries = map[string]string{}

	matches, err := filepath.Glob(filepath.Join(c.path, c.Name+"_*.csv"))
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		err = c.scanFile(match, entries)
		if err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (c *CSVLog) scanFile(name string, entries map[string]string) (err error) {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to open csv log [%s]", name))
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to read csv log [%s]", name))
	}

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == header[0] {
			continue
		}

		e, err := decodeRecord(record)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("invalid row in csv log [%s]", name))
		}

		key := e.PseudoID()
		if _, ok := entries[key]; !ok {
			_, entries[key] = Marshal(e)
		}
	}

	return nil
}

// Close is a no-op, files are only kept open for the duration of a write
func (c *CSVLog) Close() (err error) {
	return nil
}

func (c *CSVLog) fileName(ts time.Time) (name string) {
	return filepath.Join(c.path, fmt.Sprintf("%s_%d_%02d.csv", c.Name, ts.Year(), int(ts.Month())))
}
