// Package audit keeps a JSONL journal of every frame sent to the link.
//
// Each line records the action (establish, send, arm), the frame text and
// the outcome code. Files rotate by size.
package audit
