// Package notify routes guidance engine events into user-facing feedback:
// a text channel with overwrite semantics, a speech queue with
// flush-on-new-message semantics, and policy hooks back into the owning
// session.
package notify

import "sync"

// TextSink receives the single most-recent feedback line. Publishing a new
// line supersedes the previous one.
type TextSink interface {
	Publish(text string)
}

// SpeechSink receives speech-grade text for synthesis.
type SpeechSink interface {
	Say(text string)
}

// LatestText is an in-memory TextSink holding only the most recent line.
type LatestText struct {
	mu   sync.Mutex
	text string
}

func (t *LatestText) Publish(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
}

// Current returns the most recently published line.
func (t *LatestText) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// SpeechQueue is an in-memory SpeechSink. A new message flushes anything
// still pending, so synthesis never lags behind the road.
type SpeechQueue struct {
	mu      sync.Mutex
	pending []string
	spoken  int
}

func (q *SpeechQueue) Say(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = q.pending[:0]
	q.pending = append(q.pending, text)
}

// Next pops the next utterance for the synthesizer, if one is pending.
func (q *SpeechQueue) Next() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", false
	}
	text := q.pending[0]
	q.pending = q.pending[1:]
	q.spoken++
	return text, true
}

// Spoken returns how many utterances have been handed to the synthesizer.
func (q *SpeechQueue) Spoken() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.spoken
}
