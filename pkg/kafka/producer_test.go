package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishBatchEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.PublishBatch(context.Background(), "picks", []Message{
		{Key: []byte("A"), Value: map[string]int{"rank": 1}, Headers: map[string]string{"run_id": "r1"}},
		{Key: []byte("B"), Value: "raw"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("got %d messages", len(w.msgs))
	}
	if string(w.msgs[0].Value) != `{"rank":1}` || w.msgs[0].Topic != "picks" {
		t.Fatalf("unexpected first message %+v", w.msgs[0])
	}
	if len(w.msgs[0].Headers) != 1 || string(w.msgs[0].Headers[0].Value) != "r1" {
		t.Fatalf("headers not set")
	}
	if string(w.msgs[1].Value) != "raw" {
		t.Fatalf("string value should pass through")
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProducerWithWriter(&fakeWriter{err: boom}, "gzip")
	if err := p.Publish(context.Background(), "picks", nil, "x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("unexpected compression mapping")
	}
}
