package review

// MockGate is a mock implementation of Gate for testing purposes
type MockGate struct {
	Decision      bool
	ReviewedPaths []string
}

// NewMockGate creates a new mock gate with the given decision
func NewMockGate(decision bool) *MockGate {
	return &MockGate{Decision: decision}
}

func (m *MockGate) Review(outputPath string) bool {
	m.ReviewedPaths = append(m.ReviewedPaths, outputPath)
	return m.Decision
}
