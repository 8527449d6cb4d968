// Package transcribe turns downloaded lectures into TXT, SRT and VTT
// transcripts. Audio is extracted with ffmpeg, transcribed by an external
// speech-to-text engine and written next to each other in the output
// directory. Files can be processed as a batch or picked up as they appear.
package transcribe
