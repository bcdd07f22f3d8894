// Command minuteminds turns meeting recordings into minutes: it uploads
// audio for transcription, then summarizes, extracts action items,
// translates, and exports the result through the minuteminds backend.
package main
