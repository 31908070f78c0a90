package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-newsroom/internal/audit"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/goliatone/go-newsroom/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents(articleID uuid.UUID) []domain.WorkflowEvent {
	base := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	actor := domain.Actor{ID: "ed-1", Role: domain.RoleEditor, Name: "Eda", Email: "eda@example.com"}
	return []domain.WorkflowEvent{
		{ID: uuid.New(), ArticleID: articleID, Action: "toReview", FromStage: domain.StageDraft, ToStage: domain.StagePtr(domain.StageCopyEdit), Actor: actor, Accepted: true, At: base},
		{ID: uuid.New(), ArticleID: articleID, Action: "publish", FromStage: domain.StageCopyEdit, Actor: actor, Reason: "InvalidTransition", At: base.Add(time.Second)},
		{ID: uuid.New(), ArticleID: articleID, Action: "toLegal", FromStage: domain.StageCopyEdit, ToStage: domain.StagePtr(domain.StageLegalReview), Actor: actor, Accepted: true, At: base.Add(2 * time.Second)},
	}
}

func logs(t *testing.T) map[string]interfaces.AuditLog {
	db := testsupport.NewBunDB(t)
	require.NoError(t, audit.CreateSchema(context.Background(), db))
	return map[string]interfaces.AuditLog{
		"memory": audit.NewMemoryLog(),
		"bun":    audit.NewBunLog(db),
	}
}

func TestAuditLogListsNewestFirst(t *testing.T) {
	for name, log := range logs(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			articleID := uuid.New()
			other := uuid.New()
			events := sampleEvents(articleID)
			for _, event := range events {
				require.NoError(t, log.Append(ctx, event))
			}
			require.NoError(t, log.Append(ctx, sampleEvents(other)[0]))

			listed, err := log.List(ctx, articleID, 0)
			require.NoError(t, err)
			require.Len(t, listed, 3)
			assert.Equal(t, events[2].ID, listed[0].ID)
			assert.Equal(t, events[1].ID, listed[1].ID)
			assert.Equal(t, events[0].ID, listed[2].ID)

			rejected := listed[1]
			assert.False(t, rejected.Accepted)
			assert.Nil(t, rejected.ToStage)
			assert.Equal(t, "InvalidTransition", rejected.Reason)

			accepted := listed[0]
			require.NotNil(t, accepted.ToStage)
			assert.Equal(t, domain.StageLegalReview, *accepted.ToStage)
			assert.Equal(t, events[2].Actor, accepted.Actor)
			assert.True(t, events[2].At.Equal(accepted.At))

			limited, err := log.List(ctx, articleID, 2)
			require.NoError(t, err)
			require.Len(t, limited, 2)
			assert.Equal(t, events[2].ID, limited[0].ID)

			empty, err := log.List(ctx, uuid.New(), 10)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestBunLogRejectsDuplicateEventIDs(t *testing.T) {
	db := testsupport.NewBunDB(t)
	ctx := context.Background()
	require.NoError(t, audit.CreateSchema(ctx, db))
	log := audit.NewBunLog(db)

	event := sampleEvents(uuid.New())[0]
	require.NoError(t, log.Append(ctx, event))
	assert.Error(t, log.Append(ctx, event))
}

func TestMemoryLogFailAndCopies(t *testing.T) {
	ctx := context.Background()
	log := audit.NewMemoryLog()
	articleID := uuid.New()
	event := sampleEvents(articleID)[0]

	boom := errors.New("disk full")
	log.Fail(boom)
	assert.ErrorIs(t, log.Append(ctx, event), boom)
	assert.Equal(t, 0, log.Count(articleID))

	log.Fail(nil)
	require.NoError(t, log.Append(ctx, event))

	listed, err := log.List(ctx, articleID, 0)
	require.NoError(t, err)
	*listed[0].ToStage = domain.StagePublished

	again := log.Events(articleID)
	assert.Equal(t, domain.StageCopyEdit, *again[0].ToStage)
}

type recordingSink struct {
	events []domain.WorkflowEvent
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event domain.WorkflowEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func TestFanoutForwardsAfterPrimary(t *testing.T) {
	ctx := context.Background()
	primary := audit.NewMemoryLog()
	healthy := &recordingSink{}
	broken := &recordingSink{err: errors.New("broker offline")}
	fanout := audit.NewFanout(primary, audit.WithSink(broken), audit.WithSink(healthy), audit.WithSink(nil))

	articleID := uuid.New()
	event := sampleEvents(articleID)[0]
	require.NoError(t, fanout.Append(ctx, event))
	assert.Len(t, healthy.events, 1)
	assert.Len(t, broken.events, 1)

	listed, err := fanout.List(ctx, articleID, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	primary.Fail(errors.New("primary down"))
	assert.Error(t, fanout.Append(ctx, event))
	assert.Len(t, healthy.events, 1, "sinks must not see events the primary refused")
}

type stubPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *stubPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func TestNATSSinkSubjectsAndPayload(t *testing.T) {
	ctx := context.Background()
	publisher := &stubPublisher{}
	sink := audit.NewNATSSink(publisher, " desk.events. ")
	events := sampleEvents(uuid.New())

	require.NoError(t, sink.Publish(ctx, events[0]))
	require.NoError(t, sink.Publish(ctx, events[1]))
	assert.Equal(t, []string{"desk.events.accepted.toReview", "desk.events.rejected.publish"}, publisher.subjects)

	var decoded domain.WorkflowEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &decoded))
	assert.Equal(t, events[0].ID, decoded.ID)
	require.NotNil(t, decoded.ToStage)
	assert.Equal(t, domain.StageCopyEdit, *decoded.ToStage)

	assert.Equal(t, "newsroom.workflow.rejected.unknown", audit.NewNATSSink(publisher, "").Subject(domain.WorkflowEvent{}))
}

func TestNATSSinkErrors(t *testing.T) {
	event := sampleEvents(uuid.New())[0]

	assert.Error(t, audit.NewNATSSink(nil, "").Publish(context.Background(), event))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	publisher := &stubPublisher{}
	assert.ErrorIs(t, audit.NewNATSSink(publisher, "").Publish(ctx, event), context.Canceled)
	assert.Empty(t, publisher.subjects)

	publisher.err = errors.New("nats: connection closed")
	assert.ErrorIs(t, audit.NewNATSSink(publisher, "").Publish(context.Background(), event), publisher.err)
}
