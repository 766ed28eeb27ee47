/*
Package inmemorydb provides an implementation of github.com/attendascot/attendascot/store's StringStorer interface
as an in-memory data store relying on a wrapping StringStorer for actual persistence.

The main use-case for the inmemorydb is to shield the real StringStorer implementation from receiving too many calls
as plugins may very well query their StringStorer on every message to evaluate for a match or answer. This matters
especially when the persistent storer is the append-only csvlog whose Scan re-reads every monthly file. Of course,
using this also allows the bot instance to offer lower latency at the expense of increased memory usage.

Example code:

	import (
		"github.com/attendascot/attendascot/store/csvlog"
		"github.com/attendascot/attendascot/store/inmemorydb"
	)

	func main() {
		// Create your persistent storer first
		persistentStorer, err := csvlog.New(plugins.AttendancePluginName, *storagePath)
		if err != nil {
			log.Fatalf("Opening [%s] db failed: %s", plugins.AttendancePluginName, err.Error())
		}
		defer persistentStorer.Close()

		// Create the inmemorydb
		attendanceStorer, err := inmemorydb.New(persistentStorer)
		if err != nil {
			log.Fatalf("Error creating in-memory db wrapper: %s", err.Error())
		}

		// Do something with the database
		att, err := plugins.NewAttendance(c, historian, attendanceStorer)

		// Run your instance
		...
	}
*/
package inmemorydb
