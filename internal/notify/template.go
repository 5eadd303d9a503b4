package notify

// Event types accepted by Dispatch. The set is closed; unknown types are
// rejected before any record read happens.
const (
	EventChatMessage    = "chat_message"
	EventTaskComment    = "task_comment"
	EventTaskCreated    = "task_created"
	EventTaskUpdated    = "task_updated"
	EventReport         = "report"
	EventDiagnosisNote  = "diagnosis_note"
	EventClientComment  = "client_comment"
	EventPatientCreated = "patient_created"
	EventPatientUpdated = "patient_updated"
)

// maxSnippet caps free-text fields embedded in notification bodies.
const maxSnippet = 60

// truncate cuts free text at maxSnippet runes, marking the cut with an
// ellipsis.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSnippet {
		return s
	}
	return string(runes[:maxSnippet]) + "…"
}

// Event carries the rendered-template inputs for one notification. The
// fields are filled from the request plus the loaded record; which ones
// matter depends on the type.
type Event struct {
	Type        string
	PatientID   string
	PatientName string
	TaskID      string
	TaskTitle   string
	Channel     string
	Section     string
	ActorName   string
	Text        string
}

func (ev Event) patientName() string {
	if ev.PatientName != "" {
		return ev.PatientName
	}
	return "Patient"
}

func (ev Event) actorName() string {
	if ev.ActorName != "" {
		return ev.ActorName
	}
	return "Staff"
}

func patientLink(ev Event) string { return "/?page=patient-detail&id=" + ev.PatientID }
func taskLink(Event) string       { return "/?page=tasks" }
func rootLink(Event) string       { return "/" }

type template struct {
	render func(ev Event) (title, body string)
	link   func(ev Event) string
}

// templates maps each event type to its notification shape. Adding an
// event type means adding a row here; the resolver and dispatch path stay
// untouched.
var templates = map[string]template{
	EventReport: {
		render: func(ev Event) (string, string) {
			section := ev.Section
			if section == "" {
				section = "report"
			}
			return "New report: " + ev.patientName(), ev.actorName() + " added a " + section + " report."
		},
		link: patientLink,
	},
	EventDiagnosisNote: {
		render: func(ev Event) (string, string) {
			title := "Diagnosis update: " + ev.patientName()
			if snippet := truncate(ev.Text); snippet != "" {
				return title, ev.actorName() + " — " + snippet
			}
			return title, ev.actorName() + " added a diagnosis update."
		},
		link: patientLink,
	},
	EventClientComment: {
		render: func(ev Event) (string, string) {
			return "New comment: " + ev.patientName(), ev.actorName() + " commented: " + truncate(ev.Text)
		},
		link: patientLink,
	},
	EventPatientCreated: {
		render: func(ev Event) (string, string) {
			return "New patient: " + ev.patientName(), ev.actorName() + " admitted " + ev.patientName() + "."
		},
		link: patientLink,
	},
	EventPatientUpdated: {
		render: func(ev Event) (string, string) {
			return "Patient updated: " + ev.patientName(), ev.actorName() + " updated the patient record."
		},
		link: patientLink,
	},
	EventTaskCreated: {
		render: func(ev Event) (string, string) {
			return "New task: " + truncate(ev.TaskTitle), ev.actorName() + " created a task."
		},
		link: taskLink,
	},
	EventTaskUpdated: {
		render: func(ev Event) (string, string) {
			return "Task updated: " + truncate(ev.TaskTitle), ev.actorName() + " updated a task."
		},
		link: taskLink,
	},
	EventTaskComment: {
		render: func(ev Event) (string, string) {
			return "Task comment: " + truncate(ev.TaskTitle), ev.actorName() + " commented: " + truncate(ev.Text)
		},
		link: taskLink,
	},
	EventChatMessage: {
		render: func(ev Event) (string, string) {
			return "New message in #" + ev.Channel, ev.actorName() + ": " + truncate(ev.Text)
		},
		link: rootLink,
	},
}

// Render builds the (title, body, link) triple for an event. The caller
// must have validated the type first.
func Render(ev Event) (title, body, link string, ok bool) {
	tpl, found := templates[ev.Type]
	if !found {
		return "", "", "", false
	}
	title, body = tpl.render(ev)
	return title, body, tpl.link(ev), true
}
