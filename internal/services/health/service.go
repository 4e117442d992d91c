package health

import "time"

const isoMillis = "2006-01-02T15:04:05.000Z"

// Payload is the liveness response body.
type Payload struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Service encapsulates health-related checks.
type Service struct {
	now func() time.Time
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{now: time.Now}
}

// Status returns the liveness payload stamped with the current time.
func (s *Service) Status() Payload {
	return Payload{Status: "OK", Timestamp: s.now().UTC().Format(isoMillis)}
}
