// Package pipeline sequences the stages that turn an audio recording into
// meeting minutes: transcription first, then summarization, item extraction,
// translation, and export, each gated on a current transcript. State survives
// between invocations through a JSON snapshot.
package pipeline
