/*
Package attendance extracts participant responses from the semi-structured
embeds posted by a closed-source event-management bot and maintains an
idempotent attendance ledger along with a rolling-window leaderboard.

The package is platform-agnostic: a Scanner consumes Messages from a
MessageSource collaborator (typically an adapter over a chat platform's
history API) and never produces chat output itself. Reporting layers read
the Ledger and Window views and format them however they like.
*/
package attendance
