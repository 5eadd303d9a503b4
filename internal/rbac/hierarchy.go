package rbac

// RankedHierarchy is the canonical strategy: each capability is a
// minimum-rank threshold and higher roles inherit everything below them.
type RankedHierarchy struct{}

// NewRankedHierarchy returns the ranked strategy.
func NewRankedHierarchy() RankedHierarchy {
	return RankedHierarchy{}
}

func (RankedHierarchy) Name() string { return "hierarchy" }

// HasRoleAtLeast compares effective rank against a minimum role. An
// unrecognized minimum always answers false.
func (RankedHierarchy) HasRoleAtLeast(s Subject, min Role) bool {
	minRank := Rank(Normalize(string(min)))
	if minRank < 0 {
		return false
	}
	return Rank(RoleOf(s)) >= minRank
}

func (p RankedHierarchy) CanAccessAdmin(s Subject) bool {
	return RoleOf(s) == RoleAdmin
}

func (p RankedHierarchy) CanAddPatient(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleNurse)
}

func (p RankedHierarchy) CanEditPatient(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleNurse)
}

func (p RankedHierarchy) CanDischargePatient(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleMedicalOfficer)
}

func (p RankedHierarchy) CanViewOverview(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleNurse)
}

func (p RankedHierarchy) CanAddReport(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleNurse)
}

func (p RankedHierarchy) CanEditReport(s Subject) bool {
	return RoleOf(s) == RoleAdmin
}

func (p RankedHierarchy) CanCreateTask(s Subject) bool {
	return p.HasRoleAtLeast(s, RoleNurse)
}

// sectionMinRole maps report sections to the minimum role allowed to
// submit them. Unknown sections are rejected outright.
var sectionMinRole = map[string]Role{
	SectionPsychiatric: RoleNurse,
	SectionBehavioral:  RoleNurse,
	SectionMedication:  RoleNurse,
	SectionADL:         RoleCareTaker,
	SectionTherapeutic: RoleNurse,
	SectionRisk:        RoleNurse,
}

func (p RankedHierarchy) CanSubmitSection(s Subject, section string) bool {
	min, ok := sectionMinRole[section]
	if !ok {
		return false
	}
	return p.HasRoleAtLeast(s, min)
}

// CanEditPatientFor allows admins, assigned doctors and the creator.
func (p RankedHierarchy) CanEditPatientFor(s Subject, rec PatientRefs) bool {
	if RoleOf(s) == RoleAdmin {
		return true
	}
	return IsAssignedDoctor(s, rec) || IsCreator(s, rec)
}

// CanDischargePatientFor allows admins and assigned doctors only; the
// creator does not qualify.
func (p RankedHierarchy) CanDischargePatientFor(s Subject, rec PatientRefs) bool {
	if RoleOf(s) == RoleAdmin {
		return true
	}
	return IsAssignedDoctor(s, rec)
}

func (p RankedHierarchy) CanAddDiagnosisFor(s Subject, rec PatientRefs) bool {
	return p.CanDischargePatientFor(s, rec)
}

func (p RankedHierarchy) CanViewHistoryFor(s Subject, rec PatientRefs) bool {
	return p.CanDischargePatientFor(s, rec)
}

// TaskEditLevel: full for admins, the creator, and assignees of
// medical_officer rank or above; progress for lower-ranked assignees;
// none for everyone else.
func (p RankedHierarchy) TaskEditLevel(s Subject, task TaskRefs, rec *PatientRefs) EditLevel {
	if RoleOf(s) == RoleAdmin || isTaskCreator(s, task) {
		return EditFull
	}
	if isTaskAssignee(s, task) {
		if p.HasRoleAtLeast(s, RoleMedicalOfficer) {
			return EditFull
		}
		return EditProgress
	}
	return EditNone
}

func (p RankedHierarchy) CanViewTask(s Subject, task TaskRefs, rec *PatientRefs) bool {
	if RoleOf(s) == RoleAdmin || isTaskCreator(s, task) || isTaskAssignee(s, task) {
		return true
	}
	if task.ClientID != "" && rec != nil && IsAssignedDoctor(s, *rec) {
		return true
	}
	return false
}

func (p RankedHierarchy) CanDeleteTask(s Subject, task TaskRefs) bool {
	return RoleOf(s) == RoleAdmin || isTaskCreator(s, task)
}
