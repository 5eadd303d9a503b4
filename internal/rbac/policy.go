package rbac

import "strings"

// PatientRefs carries the record fields relationship checks consult.
// AssignedDoctors holds unresolved assignee references (display names,
// emails or uids as stored on the record).
type PatientRefs struct {
	AssignedTherapist string
	AssignedDoctors   []string
	CreatedBy         string
}

// TaskRefs carries the task fields task checks consult.
type TaskRefs struct {
	CreatedBy  string
	AssignedTo string
	ClientID   string
}

// EditLevel is the tri-state answer for task editing.
type EditLevel string

const (
	// EditFull allows every field of the task to change.
	EditFull EditLevel = "full"
	// EditProgress allows status updates and comments only.
	EditProgress EditLevel = "progress"
	// EditNone denies editing entirely.
	EditNone EditLevel = "none"
)

// Section names accepted by report submission.
const (
	SectionPsychiatric = "psychiatric"
	SectionBehavioral  = "behavioral"
	SectionMedication  = "medication"
	SectionADL         = "adl"
	SectionTherapeutic = "therapeutic"
	SectionRisk        = "risk"
)

// Policy answers every access question the handlers ask. Implementations
// must be total: malformed or missing fields mean "no", never a panic.
// The strategy is fixed at configuration time and call sites never mix
// strategies.
type Policy interface {
	Name() string

	HasRoleAtLeast(s Subject, min Role) bool
	CanAccessAdmin(s Subject) bool
	CanAddPatient(s Subject) bool
	CanEditPatient(s Subject) bool
	CanDischargePatient(s Subject) bool
	CanViewOverview(s Subject) bool
	CanAddReport(s Subject) bool
	CanEditReport(s Subject) bool
	CanCreateTask(s Subject) bool
	CanSubmitSection(s Subject, section string) bool

	CanEditPatientFor(s Subject, rec PatientRefs) bool
	CanDischargePatientFor(s Subject, rec PatientRefs) bool
	CanAddDiagnosisFor(s Subject, rec PatientRefs) bool
	CanViewHistoryFor(s Subject, rec PatientRefs) bool

	TaskEditLevel(s Subject, task TaskRefs, rec *PatientRefs) EditLevel
	CanViewTask(s Subject, task TaskRefs, rec *PatientRefs) bool
	CanDeleteTask(s Subject, task TaskRefs) bool
}

// IsAssignedDoctor reports whether the subject's display name matches the
// record's assigned therapist or appears in its assigned doctors list.
// Names are compared trimmed and case-sensitively, as stored.
func IsAssignedDoctor(s Subject, rec PatientRefs) bool {
	name := strings.TrimSpace(s.DisplayName)
	if name == "" {
		return false
	}
	if strings.TrimSpace(rec.AssignedTherapist) == name {
		return true
	}
	for _, d := range rec.AssignedDoctors {
		if strings.TrimSpace(d) == name {
			return true
		}
	}
	return false
}

// IsCreator reports whether the subject created the record.
func IsCreator(s Subject, rec PatientRefs) bool {
	uid := strings.TrimSpace(s.UID)
	return uid != "" && strings.TrimSpace(rec.CreatedBy) == uid
}

func isTaskCreator(s Subject, task TaskRefs) bool {
	uid := strings.TrimSpace(s.UID)
	return uid != "" && strings.TrimSpace(task.CreatedBy) == uid
}

func isTaskAssignee(s Subject, task TaskRefs) bool {
	uid := strings.TrimSpace(s.UID)
	return uid != "" && strings.TrimSpace(task.AssignedTo) == uid
}
