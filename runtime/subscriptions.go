package runtime

import (
	"meet-lab/contract"
	"meet-lab/domain/meeting"
	"sync"
)

type Set map[string]struct{}

// SubscriptionRegistry maps meetings to the live transcript listeners attached to them.
type SubscriptionRegistry struct {
	mu             sync.RWMutex
	sessions       map[string]contract.EventSink // subscription -> sink
	meetingMembers map[meeting.MeetingID]Set     // meeting -> subscriptions
}

func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{
		sessions:       make(map[string]contract.EventSink),
		meetingMembers: make(map[meeting.MeetingID]Set),
	}
}

// GetSinksForMeeting returns the sinks subscribed to a meeting, nil if none.
func (r *SubscriptionRegistry) GetSinksForMeeting(meetingID meeting.MeetingID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.meetingMembers[meetingID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for subscriptionID := range members {
		if sink, exists := r.sessions[subscriptionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

func (r *SubscriptionRegistry) Subscribe(subscriptionID string, meetingID meeting.MeetingID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[subscriptionID] = sink
	if _, ok := r.meetingMembers[meetingID]; !ok {
		r.meetingMembers[meetingID] = make(Set)
	}
	r.meetingMembers[meetingID][subscriptionID] = struct{}{}
}

// Unsubscribe removes a subscription and the meeting entry once it is empty.
func (r *SubscriptionRegistry) Unsubscribe(subscriptionID string, meetingID meeting.MeetingID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, subscriptionID)
	if members, ok := r.meetingMembers[meetingID]; ok {
		delete(members, subscriptionID)
		if len(members) == 0 {
			delete(r.meetingMembers, meetingID)
		}
	}
}

// Drop detaches every subscription of an ended meeting and returns their sinks.
func (r *SubscriptionRegistry) Drop(meetingID meeting.MeetingID) []contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.meetingMembers[meetingID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for subscriptionID := range members {
		if sink, exists := r.sessions[subscriptionID]; exists {
			sinks = append(sinks, sink)
		}
		delete(r.sessions, subscriptionID)
	}
	delete(r.meetingMembers, meetingID)
	return sinks
}

// Count is the number of live subscriptions.
func (r *SubscriptionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
