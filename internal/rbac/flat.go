package rbac

// Capability names used by the flat strategy.
const (
	CapAccessAdmin      = "access_admin"
	CapAddPatient       = "add_patient"
	CapEditPatient      = "edit_patient"
	CapDischargePatient = "discharge_patient"
	CapViewOverview     = "view_overview"
	CapAddReport        = "add_report"
	CapEditReport       = "edit_report"
	CapCreateTask       = "create_task"
	CapTaskFullEdit     = "task_full_edit"
)

// FlatAllowList is the alternate strategy: roles form an unordered set
// and every capability names the roles allowed to use it. There is no
// inheritance; a role only grants what its allow-lists say, except admin
// which is a member of every list.
type FlatAllowList struct {
	caps     map[string]map[Role]bool
	sections map[string]map[Role]bool
}

// NewFlatAllowList returns the flat strategy with the default
// capability table, mirroring the thresholds of the ranked strategy at
// the point of configuration.
func NewFlatAllowList() *FlatAllowList {
	nurseUp := roleSet(RoleNurse, RoleMedicalOfficer, RoleTherapist, RolePsychologist, RolePsychiatrist)
	doctors := roleSet(RoleMedicalOfficer, RoleTherapist, RolePsychologist, RolePsychiatrist)

	return &FlatAllowList{
		caps: map[string]map[Role]bool{
			CapAccessAdmin:      roleSet(),
			CapAddPatient:       nurseUp,
			CapEditPatient:      nurseUp,
			CapDischargePatient: doctors,
			CapViewOverview:     nurseUp,
			CapAddReport:        nurseUp,
			CapEditReport:       roleSet(),
			CapCreateTask:       nurseUp,
			CapTaskFullEdit:     doctors,
		},
		sections: map[string]map[Role]bool{
			SectionPsychiatric: nurseUp,
			SectionBehavioral:  nurseUp,
			SectionMedication:  nurseUp,
			SectionADL:         roleSet(RoleCareTaker, RoleNurse, RoleMedicalOfficer, RoleTherapist, RolePsychologist, RolePsychiatrist),
			SectionTherapeutic: nurseUp,
			SectionRisk:        nurseUp,
		},
	}
}

func roleSet(roles ...Role) map[Role]bool {
	set := make(map[Role]bool, len(roles)+1)
	for _, r := range roles {
		set[r] = true
	}
	// Admin is implicitly on every allow-list.
	set[RoleAdmin] = true
	return set
}

// heldRoles collects every recognized role on the subject, single value
// and legacy list alike. Profiles with nothing recognized fall back to
// the lowest role.
func heldRoles(s Subject) []Role {
	var held []Role
	if r := Normalize(s.Role); Rank(r) >= 0 {
		held = append(held, r)
	}
	for _, raw := range s.Roles {
		if r := Normalize(raw); Rank(r) >= 0 {
			held = append(held, r)
		}
	}
	if len(held) == 0 {
		held = append(held, RoleSocialWorker)
	}
	return held
}

func (f *FlatAllowList) allowed(s Subject, set map[Role]bool) bool {
	if set == nil {
		return false
	}
	for _, r := range heldRoles(s) {
		if set[r] {
			return true
		}
	}
	return false
}

func (f *FlatAllowList) can(s Subject, capability string) bool {
	return f.allowed(s, f.caps[capability])
}

func (f *FlatAllowList) Name() string { return "flat" }

// HasRoleAtLeast has no rank order to consult here: it answers true only
// when the subject holds the named role itself, or admin.
func (f *FlatAllowList) HasRoleAtLeast(s Subject, min Role) bool {
	want := Normalize(string(min))
	if Rank(want) < 0 {
		return false
	}
	for _, r := range heldRoles(s) {
		if r == want || r == RoleAdmin {
			return true
		}
	}
	return false
}

func (f *FlatAllowList) CanAccessAdmin(s Subject) bool      { return f.can(s, CapAccessAdmin) }
func (f *FlatAllowList) CanAddPatient(s Subject) bool       { return f.can(s, CapAddPatient) }
func (f *FlatAllowList) CanEditPatient(s Subject) bool      { return f.can(s, CapEditPatient) }
func (f *FlatAllowList) CanDischargePatient(s Subject) bool { return f.can(s, CapDischargePatient) }
func (f *FlatAllowList) CanViewOverview(s Subject) bool     { return f.can(s, CapViewOverview) }
func (f *FlatAllowList) CanAddReport(s Subject) bool        { return f.can(s, CapAddReport) }
func (f *FlatAllowList) CanEditReport(s Subject) bool       { return f.can(s, CapEditReport) }
func (f *FlatAllowList) CanCreateTask(s Subject) bool       { return f.can(s, CapCreateTask) }

func (f *FlatAllowList) CanSubmitSection(s Subject, section string) bool {
	return f.allowed(s, f.sections[section])
}

func (f *FlatAllowList) CanEditPatientFor(s Subject, rec PatientRefs) bool {
	if f.can(s, CapAccessAdmin) {
		return true
	}
	return IsAssignedDoctor(s, rec) || IsCreator(s, rec)
}

func (f *FlatAllowList) CanDischargePatientFor(s Subject, rec PatientRefs) bool {
	if f.can(s, CapAccessAdmin) {
		return true
	}
	return IsAssignedDoctor(s, rec)
}

func (f *FlatAllowList) CanAddDiagnosisFor(s Subject, rec PatientRefs) bool {
	return f.CanDischargePatientFor(s, rec)
}

func (f *FlatAllowList) CanViewHistoryFor(s Subject, rec PatientRefs) bool {
	return f.CanDischargePatientFor(s, rec)
}

func (f *FlatAllowList) TaskEditLevel(s Subject, task TaskRefs, rec *PatientRefs) EditLevel {
	if f.can(s, CapAccessAdmin) || isTaskCreator(s, task) {
		return EditFull
	}
	if isTaskAssignee(s, task) {
		if f.can(s, CapTaskFullEdit) {
			return EditFull
		}
		return EditProgress
	}
	return EditNone
}

func (f *FlatAllowList) CanViewTask(s Subject, task TaskRefs, rec *PatientRefs) bool {
	if f.can(s, CapAccessAdmin) || isTaskCreator(s, task) || isTaskAssignee(s, task) {
		return true
	}
	if task.ClientID != "" && rec != nil && IsAssignedDoctor(s, *rec) {
		return true
	}
	return false
}

func (f *FlatAllowList) CanDeleteTask(s Subject, task TaskRefs) bool {
	return f.can(s, CapAccessAdmin) || isTaskCreator(s, task)
}
