package store

import "sync"

// FakeStore is an in-memory Storage for tests.
type FakeStore struct {
	mu            sync.Mutex
	conversations map[string][]ConversationMessage
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		conversations: map[string][]ConversationMessage{},
	}
}

func (s *FakeStore) AddConversationMessage(id string, msg ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversations == nil {
		s.conversations = map[string][]ConversationMessage{}
	}
	s.conversations[id] = append(s.conversations[id], msg)

	return nil
}

func (s *FakeStore) GetConversation(id string) ([]ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ConversationMessage{}, s.conversations[id]...), nil
}

func (s *FakeStore) ResetConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)

	return nil
}
