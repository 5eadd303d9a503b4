package rbac

import "testing"

func TestFlatAllowListCapabilities(t *testing.T) {
	f := NewFlatAllowList()

	if !f.CanAddPatient(subjectWith("nurse")) {
		t.Error("nurse must add patients")
	}
	if f.CanAddPatient(subjectWith("care_taker")) {
		t.Error("care_taker must not add patients")
	}
	if !f.CanSubmitSection(subjectWith("care_taker"), SectionADL) {
		t.Error("care_taker must submit adl")
	}
	if f.CanSubmitSection(subjectWith("admin"), "unknown_section") {
		t.Error("unknown section must be rejected even for admin")
	}
	if !f.CanEditReport(subjectWith("admin")) {
		t.Error("admin must edit reports")
	}
	if f.CanEditReport(subjectWith("psychiatrist")) {
		t.Error("report editing is admin-only")
	}
}

// The strategies deliberately disagree: flat has no inheritance, so a
// psychiatrist does not satisfy "at least nurse" the way the ranked
// strategy grants it.
func TestFlatHasRoleAtLeastIsMembership(t *testing.T) {
	f := NewFlatAllowList()
	h := NewRankedHierarchy()

	psych := subjectWith("psychiatrist")
	if f.HasRoleAtLeast(psych, RoleNurse) {
		t.Error("flat: psychiatrist does not hold the nurse role")
	}
	if !h.HasRoleAtLeast(psych, RoleNurse) {
		t.Error("ranked: psychiatrist outranks nurse")
	}
	if !f.HasRoleAtLeast(subjectWith("admin"), RoleNurse) {
		t.Error("flat: admin satisfies everything")
	}
	if f.HasRoleAtLeast(psych, Role("superuser")) {
		t.Error("flat: unknown minimum role must be false")
	}
}

func TestFlatMultiRoleProfile(t *testing.T) {
	f := NewFlatAllowList()
	sub := Subject{UID: "u-9", Roles: []string{"social_worker", "nurse"}}

	if !f.CanAddPatient(sub) {
		t.Error("any held role on the allow-list must qualify")
	}
	if f.CanDischargePatient(sub) {
		t.Error("no held role allows discharging")
	}
}

func TestFlatTaskChecksShareRelationshipRules(t *testing.T) {
	f := NewFlatAllowList()
	task := TaskRefs{CreatedBy: "uid-creator", AssignedTo: "uid-assignee"}

	if got := f.TaskEditLevel(Subject{UID: "uid-assignee", Role: "nurse"}, task, nil); got != EditProgress {
		t.Fatalf("flat nurse assignee edit level = %s, want progress", got)
	}
	if got := f.TaskEditLevel(Subject{UID: "uid-assignee", Role: "therapist"}, task, nil); got != EditFull {
		t.Fatalf("flat therapist assignee edit level = %s, want full", got)
	}
	if !f.CanDeleteTask(Subject{UID: "uid-creator"}, task) {
		t.Error("creator must delete")
	}
}

func TestFromName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{"", "hierarchy", false},
		{"hierarchy", "hierarchy", false},
		{"Flat", "flat", false},
		{"allowlist", "flat", false},
		{"rbac2000", "", true},
	}

	for _, tc := range cases {
		p, err := FromName(tc.in)
		if tc.err {
			if err == nil {
				t.Errorf("FromName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromName(%q): %v", tc.in, err)
			continue
		}
		if p.Name() != tc.want {
			t.Errorf("FromName(%q) = %s, want %s", tc.in, p.Name(), tc.want)
		}
	}
}
