package network

import (
	"github.com/google/uuid"
	"github.com/surgeworks/hammercad/pkg/logging"
	"github.com/surgeworks/hammercad/pkg/pubsub"
)

// DefaultVariables is the fixed variable set requested for every
// element by default.
var DefaultVariables = []string{"Q", "HEAD", "ELEV", "VEL", "PRESS", "PIEZHEAD"}

var allRequestTypes = []RequestType{RequestHistory, RequestPlot, RequestSpreadsheet}

// generateRequestsLocked appends one request per request type for the
// element, each carrying the full default variable set. Additive only:
// existing requests for other elements are untouched.
func (s *Store) generateRequestsLocked(id uint64, et ElementType) {
	for _, rt := range allRequestTypes {
		vars := make([]string, len(DefaultVariables))
		copy(vars, DefaultVariables)
		s.requests = append(s.requests, OutputRequest{
			ID:          uuid.NewString(),
			ElementID:   id,
			ElementType: et,
			RequestType: rt,
			Variables:   vars,
		})
	}
}

// GenerateRequests creates the default output requests for an existing
// element. Exposed so callers can re-request telemetry for an element
// whose requests were removed.
func (s *Store) GenerateRequests(id uint64, et ElementType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.elementExistsLocked(id, et) {
		s.recordMutation("generateRequests", "error")
		return ErrRequestElementNotFound
	}

	s.recordLocked()
	s.generateRequestsLocked(id, et)
	s.recordMutation("generateRequests", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "generateRequests", id)
	return nil
}

// AutoSelectAll replaces the entire request set with the defaults for
// every node and edge, in ID order. Used after loading a network that
// carries no saved requests.
func (s *Store) AutoSelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordLocked()
	s.requests = s.requests[:0]
	for _, id := range s.sortedNodeIDsLocked() {
		s.generateRequestsLocked(id, ElementNode)
	}
	for _, id := range s.sortedEdgeIDsLocked() {
		s.generateRequestsLocked(id, ElementEdge)
	}

	s.recordMutation("autoSelectAll", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "autoSelectAll", 0)
	s.log.Debug("output requests regenerated", logging.Count(len(s.requests)))
}

// AddRequest appends a caller-specified output request for an existing
// element.
func (s *Store) AddRequest(id uint64, et ElementType, rt RequestType, variables []string) (OutputRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.elementExistsLocked(id, et) {
		s.recordMutation("addRequest", "error")
		return OutputRequest{}, ErrRequestElementNotFound
	}

	s.recordLocked()
	vars := make([]string, len(variables))
	copy(vars, variables)
	req := OutputRequest{
		ID:          uuid.NewString(),
		ElementID:   id,
		ElementType: et,
		RequestType: rt,
		Variables:   vars,
	}
	s.requests = append(s.requests, req)

	s.recordMutation("addRequest", "ok")
	s.updateGaugesLocked()
	s.publish(pubsub.TopicGraph, "addRequest", id)
	return req.Clone(), nil
}

// RemoveRequest deletes an output request by its ID. Unknown IDs are a
// no-op.
func (s *Store) RemoveRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.requests {
		if r.ID == requestID {
			s.recordLocked()
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			s.recordMutation("removeRequest", "ok")
			s.updateGaugesLocked()
			s.publish(pubsub.TopicGraph, "removeRequest", r.ElementID)
			return
		}
	}
}
