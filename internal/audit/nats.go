package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/nats-io/nats.go"
)

const defaultSubjectPrefix = "newsroom.workflow"

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSSink publishes workflow events as JSON on <prefix>.<accepted|rejected>.<action>.
type NATSSink struct {
	publisher Publisher
	prefix    string
}

var _ interfaces.EventSink = (*NATSSink)(nil)

// NewNATSSink constructs a sink over an established publisher.
func NewNATSSink(publisher Publisher, prefix string) *NATSSink {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return &NATSSink{publisher: publisher, prefix: prefix}
}

// ConnectNATS dials the NATS server used for workflow events.
func ConnectNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("go-newsroom"))
	if err != nil {
		return nil, fmt.Errorf("audit: connect nats: %w", err)
	}
	return conn, nil
}

// Subject returns the subject an event is published on.
func (s *NATSSink) Subject(event domain.WorkflowEvent) string {
	outcome := "rejected"
	if event.Accepted {
		outcome = "accepted"
	}
	action := strings.ReplaceAll(strings.TrimSpace(event.Action), ".", "_")
	if action == "" {
		action = "unknown"
	}
	return s.prefix + "." + outcome + "." + action
}

func (s *NATSSink) Publish(ctx context.Context, event domain.WorkflowEvent) error {
	if s.publisher == nil {
		return errors.New("audit: nats sink requires a publisher")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: encode event: %w", err)
	}
	return s.publisher.Publish(s.Subject(event), data)
}
