package bot

import (
	"context"
	"sync"
	"time"

	"github.com/memohai/bucketlink/internal/callback"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Menu   *Menu
}

type recordingReplier struct {
	mu      sync.Mutex
	sent    []sentMessage
	acks    []string
	sendErr error
	ackErr  error
}

func (r *recordingReplier) SendText(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: text})
	return r.sendErr
}

func (r *recordingReplier) SendMenu(_ context.Context, chatID int64, menu Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := menu
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: menu.Text, Menu: &m})
	return r.sendErr
}

func (r *recordingReplier) AckCallback(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, id)
	return r.ackErr
}

type stubLister struct {
	keys []string
	err  error
}

func (s stubLister) Keys(context.Context) ([]string, error) {
	return s.keys, s.err
}

type linkCall struct {
	Duration callback.Duration
	Key      string
}

type stubLinker struct {
	calls []linkCall
	err   error
}

func (s *stubLinker) Link(_ context.Context, d callback.Duration, key string) (string, error) {
	s.calls = append(s.calls, linkCall{Duration: d, Key: key})
	if s.err != nil {
		return "", s.err
	}
	if d == callback.DurationPermanent {
		return "https://s3.us-east-1.wasabisys.com/media/" + key, nil
	}
	return "https://s3.us-east-1.wasabisys.com/media/" + key + "?X-Amz-Expires=86400", nil
}

func newCodec() *callback.Codec {
	return callback.NewCodec(callback.NewRefStore(time.Hour))
}
