package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/staff"
	"github.com/caretrackhq/backend/internal/task"
)

type stubLister struct {
	profiles []staff.Profile
}

func (s stubLister) ListProfiles(context.Context) ([]staff.Profile, error) {
	return s.profiles, nil
}

type stubPatients struct {
	record patient.Patient
	err    error
}

func (s stubPatients) Get(context.Context, uuid.UUID) (patient.Patient, error) {
	return s.record, s.err
}

type stubTasks struct {
	record task.Task
	err    error
}

func (s stubTasks) Get(context.Context, uuid.UUID) (task.Task, error) {
	return s.record, s.err
}

type captureMessenger struct {
	last   *Message
	result SendResult
	err    error
}

func (m *captureMessenger) Send(_ context.Context, msg Message) (SendResult, error) {
	m.last = &msg
	return m.result, m.err
}

var clientID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func newTestService(profiles []staff.Profile, p patient.Patient, messenger Messenger) *Service {
	return NewService(
		stubLister{profiles: profiles},
		stubPatients{record: p},
		stubTasks{record: task.Task{Title: "Weekly review"}},
		messenger,
	)
}

func TestDispatchSendsOneBatchedPush(t *testing.T) {
	msgr := &captureMessenger{result: SendResult{SuccessCount: 1}}
	svc := newTestService(testProfiles(), patient.Patient{
		ID:              clientID,
		Name:            "John Smith",
		AssignedDoctors: []string{"Dr. Jane Doe"},
	}, msgr)

	receipt, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:        EventDiagnosisNote,
		ClientID:    clientID.String(),
		AddedByName: "Mark Spencer",
		Diagnosis:   "Stable this week",
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Sent != 1 || receipt.ResolvedCount != 1 {
		t.Fatalf("receipt = %+v, want sent 1 resolved 1", receipt)
	}
	if msgr.last == nil {
		t.Fatal("messenger not called")
	}
	if len(msgr.last.Tokens) != 1 || msgr.last.Tokens[0] != "TOK_JANE" {
		t.Fatalf("tokens = %v, want [TOK_JANE]", msgr.last.Tokens)
	}
	if msgr.last.Link != "/?page=patient-detail&id="+clientID.String() {
		t.Fatalf("link = %q", msgr.last.Link)
	}
	if msgr.last.Data["clientId"] != clientID.String() || msgr.last.Data["type"] != EventDiagnosisNote {
		t.Fatalf("data = %v", msgr.last.Data)
	}
}

func TestDispatchMatchedButNoToken(t *testing.T) {
	msgr := &captureMessenger{}
	svc := newTestService(testProfiles(), patient.Patient{
		ID:              clientID,
		Name:            "John Smith",
		AssignedDoctors: []string{"Rita Ng"},
	}, msgr)

	receipt, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:     EventDiagnosisNote,
		ClientID: clientID.String(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Sent != 0 || receipt.Reason != "no_tokens" || receipt.ResolvedCount != 1 {
		t.Fatalf("receipt = %+v, want sent 0 no_tokens resolved 1", receipt)
	}
	if msgr.last != nil {
		t.Fatal("messenger must not be called with no tokens")
	}
}

func TestDispatchNobodyMatched(t *testing.T) {
	svc := newTestService(testProfiles(), patient.Patient{
		ID:              clientID,
		AssignedDoctors: []string{"Nobody Known"},
	}, &captureMessenger{})

	receipt, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:     EventDiagnosisNote,
		ClientID: clientID.String(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Reason != "no_tokens" || receipt.ResolvedCount != 0 {
		t.Fatalf("receipt = %+v, want no_tokens resolved 0", receipt)
	}
}

func TestDispatchTherapistFallback(t *testing.T) {
	msgr := &captureMessenger{result: SendResult{SuccessCount: 1}}
	svc := newTestService(testProfiles(), patient.Patient{
		ID:                clientID,
		Name:              "John Smith",
		AssignedTherapist: "jane@clinic.test",
	}, msgr)

	receipt, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:     EventClientComment,
		ClientID: clientID.String(),
		Text:     "Family visit went well",
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Sent != 1 {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestDispatchExcludesExplicitActor(t *testing.T) {
	msgr := &captureMessenger{}
	svc := newTestService(testProfiles(), patient.Patient{
		ID:              clientID,
		AssignedDoctors: []string{"Dr. Jane Doe"},
	}, msgr)

	// The report author is the only assignee; exclusion leaves nobody.
	receipt, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:        EventReport,
		ClientID:    clientID.String(),
		Section:     "risk",
		SubmittedBy: uidJane,
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Reason != "no_tokens" || receipt.ResolvedCount != 0 {
		t.Fatalf("receipt = %+v, want no_tokens resolved 0", receipt)
	}
}

func TestDispatchChatBroadcast(t *testing.T) {
	msgr := &captureMessenger{result: SendResult{SuccessCount: 1}}
	svc := newTestService(testProfiles(), patient.Patient{}, msgr)

	receipt, err := svc.Dispatch(context.Background(), uidJane, Request{
		Type:        EventChatMessage,
		Channel:     "general",
		AddedByName: "Dr. Jane Doe",
		Text:        "Shift handover at 6",
	})
	if err != nil {
		t.Fatal(err)
	}
	// Mark is the only other active profile with a token.
	if msgr.last == nil || len(msgr.last.Tokens) != 1 || msgr.last.Tokens[0] != "TOK_MARK" {
		t.Fatalf("tokens = %v, want [TOK_MARK]", msgr.last)
	}
	if receipt.ResolvedCount != 2 {
		t.Fatalf("resolved = %d, want 2 (mark and rita)", receipt.ResolvedCount)
	}
}

func TestDispatchValidation(t *testing.T) {
	svc := newTestService(testProfiles(), patient.Patient{}, &captureMessenger{})

	if _, err := svc.Dispatch(context.Background(), uidMark, Request{Type: "mystery"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type err = %v", err)
	}
	if _, err := svc.Dispatch(context.Background(), uidMark, Request{Type: EventReport}); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("missing clientId err = %v", err)
	}
	if _, err := svc.Dispatch(context.Background(), uidMark, Request{Type: EventTaskCreated}); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("missing taskId err = %v", err)
	}
	if _, err := svc.Dispatch(context.Background(), uidMark, Request{Type: EventChatMessage}); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("missing channel err = %v", err)
	}
}

func TestDispatchPartialFailure(t *testing.T) {
	msgr := &captureMessenger{result: SendResult{SuccessCount: 1, FailureCount: 1}}
	svc := newTestService(testProfiles(), patient.Patient{
		ID:              clientID,
		AssignedDoctors: []string{"Dr. Jane Doe", "Mark Spencer"},
	}, msgr)

	receipt, err := svc.Dispatch(context.Background(), uidRita, Request{
		Type:     EventPatientUpdated,
		ClientID: clientID.String(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Sent != 1 || receipt.Failed != 1 {
		t.Fatalf("receipt = %+v, want sent 1 failed 1", receipt)
	}
}

func TestDispatchRecordNotFound(t *testing.T) {
	svc := NewService(
		stubLister{profiles: testProfiles()},
		stubPatients{err: patient.ErrNotFound},
		stubTasks{},
		&captureMessenger{},
	)

	if _, err := svc.Dispatch(context.Background(), uidMark, Request{
		Type:     EventReport,
		ClientID: clientID.String(),
	}); !errors.Is(err, patient.ErrNotFound) {
		t.Fatalf("err = %v, want patient.ErrNotFound", err)
	}
}
