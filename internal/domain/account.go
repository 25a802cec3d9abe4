package domain

import "sync"

type AccountKey string

// AccountEntry is one line of the accounts file: an opaque launch link or
// query string.
type AccountEntry struct {
	Raw string
}

type AccountIdentity struct {
	Key   AccountKey
	Label string
}

// AccountState carries an entry and its current bearer token for the
// lifetime of a run. The token is shared between the action loop and the
// refresh timer; whichever write lands last wins.
type AccountState struct {
	Entry AccountEntry

	mu    sync.RWMutex
	token string
}

func NewAccountState(entry AccountEntry) *AccountState {
	return &AccountState{Entry: entry}
}

func NewAccountStates(entries []AccountEntry) []*AccountState {
	states := make([]*AccountState, 0, len(entries))
	for _, entry := range entries {
		states = append(states, NewAccountState(entry))
	}

	return states
}

func (s *AccountState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *AccountState) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Label never fails; see LabelFor.
func (s *AccountState) Label() string {
	return LabelFor(s.Entry.Raw)
}
