package rbac

import "testing"

func subjectWith(role string) Subject {
	return Subject{UID: "u-1", DisplayName: "Staff Member", Role: role}
}

func TestHasRoleAtLeastMatchesRankOrder(t *testing.T) {
	p := NewRankedHierarchy()
	for _, r1 := range Hierarchy {
		for _, r2 := range Hierarchy {
			got := p.HasRoleAtLeast(subjectWith(string(r1)), r2)
			want := Rank(r1) >= Rank(r2)
			if got != want {
				t.Errorf("HasRoleAtLeast(%s, %s) = %v, want %v", r1, r2, got, want)
			}
		}
	}
}

func TestHasRoleAtLeastUnknownMinRole(t *testing.T) {
	p := NewRankedHierarchy()
	if p.HasRoleAtLeast(subjectWith("admin"), Role("superuser")) {
		t.Fatal("unknown minimum role must never be satisfied")
	}
}

func TestRoleOfLegacyListTakesHighestRank(t *testing.T) {
	cases := []struct {
		name string
		sub  Subject
		want Role
	}{
		{"list max wins", Subject{Roles: []string{"nurse", "admin"}}, RoleAdmin},
		{"list order irrelevant", Subject{Roles: []string{"admin", "nurse"}}, RoleAdmin},
		{"single recognized wins over list", Subject{Role: "therapist", Roles: []string{"admin"}}, RoleTherapist},
		{"unrecognized single falls to list", Subject{Role: "wizard", Roles: []string{"care_taker"}}, RoleCareTaker},
		{"whitespace and case normalized", Subject{Role: "  Nurse "}, RoleNurse},
		{"nothing recognized defaults to lowest", Subject{Role: "wizard", Roles: []string{"x", ""}}, RoleSocialWorker},
		{"empty profile defaults to lowest", Subject{}, RoleSocialWorker},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleOf(tc.sub); got != tc.want {
				t.Fatalf("RoleOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCoarseCapabilities(t *testing.T) {
	p := NewRankedHierarchy()

	if p.CanAddPatient(subjectWith("care_taker")) {
		t.Error("care_taker must not add patients")
	}
	if !p.CanAddPatient(subjectWith("nurse")) {
		t.Error("nurse must add patients")
	}
	if p.CanDischargePatient(subjectWith("nurse")) {
		t.Error("nurse must not discharge")
	}
	if !p.CanDischargePatient(subjectWith("psychiatrist")) {
		t.Error("psychiatrist must discharge")
	}
	if p.CanAccessAdmin(subjectWith("psychiatrist")) {
		t.Error("admin area is admin-only")
	}
	if !p.CanAccessAdmin(subjectWith("admin")) {
		t.Error("admin must access admin area")
	}
	if p.CanEditReport(subjectWith("psychiatrist")) {
		t.Error("report editing is admin-only")
	}
}

func TestSectionGating(t *testing.T) {
	p := NewRankedHierarchy()

	if !p.CanSubmitSection(subjectWith("care_taker"), SectionADL) {
		t.Error("care_taker must submit adl")
	}
	if p.CanSubmitSection(subjectWith("care_taker"), SectionMedication) {
		t.Error("care_taker must not submit medication")
	}
	for _, role := range Hierarchy {
		if p.CanSubmitSection(subjectWith(string(role)), "unknown_section") {
			t.Errorf("unknown section allowed for %s", role)
		}
	}
}

func TestPatientRelationshipChecks(t *testing.T) {
	p := NewRankedHierarchy()
	rec := PatientRefs{
		AssignedTherapist: "Dr. Priya Sharma",
		AssignedDoctors:   []string{"Dr. Anil Kumar", " Dr. Meera Nair "},
		CreatedBy:         "uid-creator",
	}

	assigned := Subject{UID: "u-2", DisplayName: "Dr. Meera Nair", Role: "therapist"}
	creator := Subject{UID: "uid-creator", DisplayName: "Nurse Joy", Role: "nurse"}
	outsider := Subject{UID: "u-3", DisplayName: "Dr. Who", Role: "psychiatrist"}

	if !IsAssignedDoctor(assigned, rec) {
		t.Error("trimmed list entry must match")
	}
	if IsAssignedDoctor(Subject{DisplayName: "dr. meera nair"}, rec) {
		t.Error("name match is case-sensitive")
	}

	if !p.CanEditPatientFor(creator, rec) {
		t.Error("creator must edit")
	}
	if !p.CanEditPatientFor(assigned, rec) {
		t.Error("assigned doctor must edit")
	}
	if p.CanEditPatientFor(outsider, rec) {
		t.Error("unrelated staff must not edit")
	}

	// Deliberate asymmetry: the creator does not qualify past editing.
	if p.CanDischargePatientFor(creator, rec) {
		t.Error("creator must not discharge")
	}
	if p.CanAddDiagnosisFor(creator, rec) {
		t.Error("creator must not add diagnoses")
	}
	if p.CanViewHistoryFor(creator, rec) {
		t.Error("creator must not view history")
	}
	if !p.CanViewHistoryFor(assigned, rec) {
		t.Error("assigned doctor must view history")
	}
}

func TestTaskEditLevel(t *testing.T) {
	p := NewRankedHierarchy()
	task := TaskRefs{CreatedBy: "uid-creator", AssignedTo: "uid-assignee", ClientID: "c1"}

	nurseAssignee := Subject{UID: "uid-assignee", Role: "nurse"}
	if got := p.TaskEditLevel(nurseAssignee, task, nil); got != EditProgress {
		t.Fatalf("nurse assignee edit level = %s, want progress", got)
	}

	asCreator := Subject{UID: "uid-creator", Role: "nurse"}
	if got := p.TaskEditLevel(asCreator, task, nil); got != EditFull {
		t.Fatalf("creator edit level = %s, want full", got)
	}

	doctorAssignee := Subject{UID: "uid-assignee", Role: "medical_officer"}
	if got := p.TaskEditLevel(doctorAssignee, task, nil); got != EditFull {
		t.Fatalf("doctor assignee edit level = %s, want full", got)
	}

	outsider := Subject{UID: "uid-other", Role: "psychiatrist"}
	if got := p.TaskEditLevel(outsider, task, nil); got != EditNone {
		t.Fatalf("outsider edit level = %s, want none", got)
	}
}

func TestCanViewTask(t *testing.T) {
	p := NewRankedHierarchy()
	task := TaskRefs{CreatedBy: "uid-creator", AssignedTo: "uid-assignee", ClientID: "c1"}
	rec := PatientRefs{AssignedDoctors: []string{"Dr. Linked"}}

	if !p.CanViewTask(Subject{UID: "uid-assignee", Role: "care_taker"}, task, nil) {
		t.Error("assignee must view")
	}
	if !p.CanViewTask(Subject{UID: "x", DisplayName: "Dr. Linked", Role: "therapist"}, task, &rec) {
		t.Error("assigned doctor of linked record must view")
	}
	if p.CanViewTask(Subject{UID: "x", DisplayName: "Dr. Linked", Role: "therapist"}, TaskRefs{CreatedBy: "a", AssignedTo: "b"}, &rec) {
		t.Error("record link is required for doctor visibility")
	}
	if p.CanViewTask(Subject{UID: "y", Role: "nurse"}, task, &rec) {
		t.Error("unrelated staff must not view")
	}
}

func TestCanDeleteTask(t *testing.T) {
	p := NewRankedHierarchy()
	task := TaskRefs{CreatedBy: "uid-creator", AssignedTo: "uid-assignee"}

	if p.CanDeleteTask(Subject{UID: "uid-assignee", Role: "psychiatrist"}, task) {
		t.Error("assignee must not delete")
	}
	if !p.CanDeleteTask(Subject{UID: "uid-creator", Role: "care_taker"}, task) {
		t.Error("creator must delete")
	}
	if !p.CanDeleteTask(subjectWith("admin"), task) {
		t.Error("admin must delete")
	}
}

func TestPredicatesTotalOnMalformedInput(t *testing.T) {
	p := NewRankedHierarchy()
	empty := Subject{}

	// None of these may panic; all must answer the conservative "no".
	if p.CanEditPatientFor(empty, PatientRefs{}) {
		t.Error("empty subject must not edit")
	}
	if p.CanViewTask(empty, TaskRefs{}, nil) {
		t.Error("empty subject must not view")
	}
	if got := p.TaskEditLevel(empty, TaskRefs{}, nil); got != EditNone {
		t.Errorf("empty subject edit level = %s, want none", got)
	}
	if IsCreator(empty, PatientRefs{}) {
		t.Error("empty uids must not match as creator")
	}
	if isTaskAssignee(empty, TaskRefs{}) {
		t.Error("empty uids must not match as assignee")
	}
}
