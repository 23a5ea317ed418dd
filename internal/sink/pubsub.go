package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

// PubSub publishes each record as a JSON message. Publishes are
// fire-and-forget; the client batches and retries in the background, and
// Close drains outstanding sends before returning.
type PubSub struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSub connects to the project and verifies the topic exists, so a
// misconfigured topic fails the run before any crawling starts.
func NewPubSub(ctx context.Context, projectID, topicID string) (*PubSub, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, scrape.NewSetupError("pubsub", fmt.Errorf("create client: %w", err))
	}
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close() //nolint:errcheck
		return nil, scrape.NewSetupError("pubsub", fmt.Errorf("check topic %s: %w", topicID, err))
	}
	if !exists {
		client.Close() //nolint:errcheck
		return nil, scrape.NewSetupError("pubsub",
			fmt.Errorf("topic %s does not exist in project %s", topicID, projectID))
	}
	return &PubSub{client: client, topic: topic}, nil
}

// Write publishes one record.
func (s *PubSub) Write(ctx context.Context, record scrape.ProfileRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	s.topic.Publish(ctx, &pubsub.Message{Data: data})
	return nil
}

// Close flushes pending publishes and releases the client.
func (s *PubSub) Close() error {
	s.topic.Stop()
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}

// Tee duplicates writes to every sink in order. Close closes all of them
// and reports the first failure.
type Tee struct {
	sinks []scrape.RecordSink
}

// NewTee wraps multiple sinks as one.
func NewTee(sinks ...scrape.RecordSink) *Tee {
	return &Tee{sinks: sinks}
}

func (t *Tee) Write(ctx context.Context, record scrape.ProfileRecord) error {
	for _, s := range t.sinks {
		if err := s.Write(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tee) Close() error {
	var first error
	for _, s := range t.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
