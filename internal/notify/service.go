package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/staff"
	"github.com/caretrackhq/backend/internal/task"
)

var (
	// ErrUnknownType is returned for an event type outside the closed set.
	ErrUnknownType = errors.New("unknown event type")

	// ErrMissingTarget is returned when the request lacks the correlating
	// id its event type requires (clientId, taskId or channel).
	ErrMissingTarget = errors.New("missing event target")
)

// ProfileLister reads the full staff snapshot. One bulk read per
// dispatch; no incremental caching.
type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]staff.Profile, error)
}

// PatientReader loads the patient record an event correlates to.
type PatientReader interface {
	Get(ctx context.Context, id uuid.UUID) (patient.Patient, error)
}

// TaskReader loads the task record an event correlates to.
type TaskReader interface {
	Get(ctx context.Context, id uuid.UUID) (task.Task, error)
}

// Service resolves event recipients and dispatches one batched push per
// triggering event. It holds no state between dispatches.
type Service struct {
	profiles  ProfileLister
	patients  PatientReader
	tasks     TaskReader
	messenger Messenger
}

// NewService wires the dispatch dependencies.
func NewService(profiles ProfileLister, patients PatientReader, tasks TaskReader, messenger Messenger) *Service {
	return &Service{profiles: profiles, patients: patients, tasks: tasks, messenger: messenger}
}

// Request is the caller-facing dispatch payload. Which fields are
// required depends on Type; extra display fields let the caller override
// what the loaded record carries.
type Request struct {
	Type            string `json:"type"`
	ClientID        string `json:"clientId,omitempty"`
	TaskID          string `json:"taskId,omitempty"`
	Channel         string `json:"channel,omitempty"`
	ClientName      string `json:"clientName,omitempty"`
	Section         string `json:"section,omitempty"`
	SubmittedBy     string `json:"submittedBy,omitempty"`
	SubmittedByName string `json:"submittedByName,omitempty"`
	AddedBy         string `json:"addedBy,omitempty"`
	AddedByName     string `json:"addedByName,omitempty"`
	Diagnosis       string `json:"diagnosis,omitempty"`
	Text            string `json:"text,omitempty"`
}

// Receipt is the dispatch outcome returned to the caller. Sent and
// Failed come from the transport's per-token results; ResolvedCount
// distinguishes "nobody assigned" from "assigned but token-less" when
// Reason is no_tokens.
type Receipt struct {
	Sent          int    `json:"sent"`
	Failed        int    `json:"failed,omitempty"`
	ResolvedCount int    `json:"resolvedCount"`
	Reason        string `json:"reason,omitempty"`
}

// patientEvents correlate to a patient record via ClientID.
var patientEvents = map[string]bool{
	EventReport:         true,
	EventDiagnosisNote:  true,
	EventClientComment:  true,
	EventPatientCreated: true,
	EventPatientUpdated: true,
}

// taskEvents correlate to a task record via TaskID.
var taskEvents = map[string]bool{
	EventTaskCreated: true,
	EventTaskUpdated: true,
	EventTaskComment: true,
}

// excludeUID picks which identifier must not receive its own
// notification. Events that carry an explicit actor field use it;
// everything else falls back to the authenticated caller.
func excludeUID(actorUID string, req Request) string {
	switch req.Type {
	case EventReport:
		if req.SubmittedBy != "" {
			return req.SubmittedBy
		}
	default:
		if req.AddedBy != "" {
			return req.AddedBy
		}
	}
	return actorUID
}

// Dispatch validates the event, resolves its recipients and sends one
// batched push. An empty token set is a normal outcome reported as
// reason no_tokens, never an error.
func (s *Service) Dispatch(ctx context.Context, actorUID string, req Request) (Receipt, error) {
	if _, ok := templates[req.Type]; !ok {
		return Receipt{}, ErrUnknownType
	}

	ev := Event{
		Type:      req.Type,
		Channel:   req.Channel,
		Section:   req.Section,
		ActorName: req.AddedByName,
	}
	if req.Type == EventReport {
		ev.ActorName = req.SubmittedByName
	}

	var assignees []string
	data := map[string]string{"type": req.Type}

	switch {
	case patientEvents[req.Type]:
		if req.ClientID == "" {
			return Receipt{}, ErrMissingTarget
		}
		id, err := uuid.Parse(req.ClientID)
		if err != nil {
			return Receipt{}, ErrMissingTarget
		}
		p, err := s.patients.Get(ctx, id)
		if err != nil {
			return Receipt{}, err
		}
		assignees = p.AssigneeRefs()
		ev.PatientID = req.ClientID
		ev.PatientName = req.ClientName
		if ev.PatientName == "" {
			ev.PatientName = p.Name
		}
		ev.Text = req.Diagnosis
		if req.Text != "" {
			ev.Text = req.Text
		}
		data["clientId"] = req.ClientID

	case taskEvents[req.Type]:
		if req.TaskID == "" {
			return Receipt{}, ErrMissingTarget
		}
		id, err := uuid.Parse(req.TaskID)
		if err != nil {
			return Receipt{}, ErrMissingTarget
		}
		t, err := s.tasks.Get(ctx, id)
		if err != nil {
			return Receipt{}, err
		}
		assignees = t.AssigneeRefs()
		ev.TaskID = req.TaskID
		ev.TaskTitle = t.Title
		ev.Text = req.Text
		data["taskId"] = req.TaskID

	case req.Type == EventChatMessage:
		if req.Channel == "" {
			return Receipt{}, ErrMissingTarget
		}
		ev.Text = req.Text
		data["channel"] = req.Channel
	}

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return Receipt{}, err
	}
	dir := NewDirectory(profiles)

	exclude := excludeUID(actorUID, req)
	var res Resolution
	if req.Type == EventChatMessage {
		res = dir.AllStaffTokens(exclude)
	} else {
		res = dir.Resolve(assignees, exclude)
	}

	if len(res.Tokens) == 0 {
		dispatchTotal.WithLabelValues(req.Type, "no_tokens").Inc()
		return Receipt{Sent: 0, Reason: "no_tokens", ResolvedCount: res.ResolvedCount}, nil
	}

	title, body, link, _ := Render(ev)
	data["title"] = title
	data["body"] = body

	result, err := s.messenger.Send(ctx, Message{
		Title:  title,
		Body:   body,
		Link:   link,
		Data:   data,
		Tokens: res.Tokens,
	})
	if err != nil {
		dispatchTotal.WithLabelValues(req.Type, "error").Inc()
		return Receipt{}, err
	}

	dispatchTotal.WithLabelValues(req.Type, "sent").Inc()
	tokensSent.Add(float64(result.SuccessCount))
	tokensFailed.Add(float64(result.FailureCount))

	return Receipt{
		Sent:          result.SuccessCount,
		Failed:        result.FailureCount,
		ResolvedCount: res.ResolvedCount,
	}, nil
}
