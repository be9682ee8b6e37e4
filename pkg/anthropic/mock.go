package anthropic

import "context"

// MockClient is a Client double for tests. Responses are served round-robin
// and every request is recorded.
type MockClient struct {
	Responses []MessageResponse
	Requests  []MessageRequest
	Err       error
}

func (m *MockClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	resp := m.Responses[(len(m.Requests)-1)%len(m.Responses)]
	return &resp, nil
}
