package models

import "testing"

func TestConsumeSessionDrawsBalanceFirst(t *testing.T) {
	m := &Member{
		SessionBalance: []SessionBalance{{SessionType: "PT", Balance: 1}},
		Membership: Membership{
			SessionsTotal:  2,
			SessionsByType: []SessionRemaining{{SessionType: "PT", Remaining: 2}},
		},
	}

	if !m.ConsumeSession("PT") {
		t.Fatalf("first consume failed")
	}
	if got := m.SessionBalance[0].Balance; got != 0 {
		t.Fatalf("balance = %d, want 0", got)
	}
	if got := m.Membership.SessionsByType[0].Remaining; got != 2 {
		t.Fatalf("legacy counter touched early: %d", got)
	}

	if !m.ConsumeSession("PT") {
		t.Fatalf("second consume failed")
	}
	if got := m.Membership.SessionsByType[0].Remaining; got != 1 {
		t.Errorf("legacy remaining = %d, want 1", got)
	}
	if got := m.Membership.SessionsTotal; got != 1 {
		t.Errorf("sessions total = %d, want 1", got)
	}
}

func TestConsumeSessionAtZeroChangesNothing(t *testing.T) {
	m := &Member{
		SessionBalance: []SessionBalance{{SessionType: "PT", Balance: 0}},
		Membership: Membership{
			SessionsByType: []SessionRemaining{{SessionType: "Yoga", Remaining: 3}},
		},
	}
	if m.ConsumeSession("PT") {
		t.Fatalf("consume succeeded with no PT credit")
	}
	if m.SessionBalance[0].Balance != 0 || m.Membership.SessionsByType[0].Remaining != 3 {
		t.Fatalf("ledger mutated: %+v %+v", m.SessionBalance, m.Membership.SessionsByType)
	}
	if m.ConsumeSession("Spin") {
		t.Fatalf("consume succeeded for unknown type")
	}
}

func TestAddSessions(t *testing.T) {
	m := &Member{}
	m.AddSessions("PT", 5)
	m.AddSessions("PT", 2)
	m.AddSessions("Yoga", 0)
	m.AddSessions("Yoga", -3)

	if len(m.SessionBalance) != 1 {
		t.Fatalf("balance entries = %d, want 1", len(m.SessionBalance))
	}
	if got := m.SessionBalance[0].Balance; got != 7 {
		t.Errorf("PT balance = %d, want 7", got)
	}
}

func TestAvailableSessionsAreTaggedNotSummed(t *testing.T) {
	m := &Member{
		SessionBalance: []SessionBalance{{SessionType: "PT", Balance: 2}, {SessionType: "Spin", Balance: 0}},
		Membership: Membership{
			SessionsByType: []SessionRemaining{{SessionType: "PT", Remaining: 4}},
		},
	}
	got := m.AvailableSessions()
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2: %+v", len(got), got)
	}
	if got[0] != (AvailableSession{SessionType: "PT", Remaining: 2, Source: SessionSourceBalance}) {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1] != (AvailableSession{SessionType: "PT", Remaining: 4, Source: SessionSourceMembership}) {
		t.Errorf("second entry = %+v", got[1])
	}
	if c := m.SessionCredit("PT"); c != 2 {
		t.Errorf("SessionCredit(PT) = %d, want 2", c)
	}
	if c := m.SessionCredit("Spin"); c != 0 {
		t.Errorf("SessionCredit(Spin) = %d, want 0", c)
	}
}
