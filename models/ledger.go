package models

// ConsumeSession spends one credit of sessionType. The universal balance is
// drawn first, then the legacy per-plan counters. It reports false and leaves
// the member untouched when no credit is available.
func (m *Member) ConsumeSession(sessionType string) bool {
	for i := range m.SessionBalance {
		if m.SessionBalance[i].SessionType != sessionType {
			continue
		}
		if m.SessionBalance[i].Balance > 0 {
			m.SessionBalance[i].Balance--
			return true
		}
		break
	}

	for i := range m.Membership.SessionsByType {
		if m.Membership.SessionsByType[i].SessionType != sessionType {
			continue
		}
		if m.Membership.SessionsByType[i].Remaining > 0 {
			m.Membership.SessionsByType[i].Remaining--
			if m.Membership.SessionsTotal > 0 {
				m.Membership.SessionsTotal--
			}
			return true
		}
		break
	}

	return false
}

// AddSessions tops up the universal balance for sessionType. Non-positive
// counts are ignored.
func (m *Member) AddSessions(sessionType string, count int) {
	if count <= 0 {
		return
	}
	for i := range m.SessionBalance {
		if m.SessionBalance[i].SessionType == sessionType {
			m.SessionBalance[i].Balance += count
			return
		}
	}
	m.SessionBalance = append(m.SessionBalance, SessionBalance{SessionType: sessionType, Balance: count})
}

const (
	SessionSourceBalance    = "balance"
	SessionSourceMembership = "membership"
)

type AvailableSession struct {
	SessionType string `json:"sessionType"`
	Remaining   int    `json:"remaining"`
	Source      string `json:"source"`
}

// AvailableSessions lists every non-empty credit pool tagged with where it lives.
// Pools are never summed across sources.
func (m *Member) AvailableSessions() []AvailableSession {
	out := make([]AvailableSession, 0, len(m.SessionBalance)+len(m.Membership.SessionsByType))
	for _, b := range m.SessionBalance {
		if b.Balance > 0 {
			out = append(out, AvailableSession{SessionType: b.SessionType, Remaining: b.Balance, Source: SessionSourceBalance})
		}
	}
	for _, s := range m.Membership.SessionsByType {
		if s.Remaining > 0 {
			out = append(out, AvailableSession{SessionType: s.SessionType, Remaining: s.Remaining, Source: SessionSourceMembership})
		}
	}
	return out
}

// SessionCredit returns the credits ConsumeSession would draw from next for
// sessionType, or zero when none are left.
func (m *Member) SessionCredit(sessionType string) int {
	for _, b := range m.SessionBalance {
		if b.SessionType == sessionType && b.Balance > 0 {
			return b.Balance
		}
	}
	for _, s := range m.Membership.SessionsByType {
		if s.SessionType == sessionType && s.Remaining > 0 {
			return s.Remaining
		}
	}
	return 0
}
