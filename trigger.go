package buoyancy

import (
	"github.com/akmonengine/buoyancy/actor"
)

const (
	TRIGGER_ENTER EventType = iota
	TRIGGER_STAY
	TRIGGER_EXIT
	ON_SLEEP
	ON_WAKE
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case TRIGGER_ENTER:
		return "trigger-enter"
	case TRIGGER_STAY:
		return "trigger-stay"
	case TRIGGER_EXIT:
		return "trigger-exit"
	case ON_SLEEP:
		return "sleep"
	case ON_WAKE:
		return "wake"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
//
// Overlapping trigger pairs are recorded during the substeps of a step. At
// flush the set is diffed against the previous step: every enter event is
// sent first, then every stay, then every exit, each group in the order the
// pairs were first seen.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
	previousOrder       []pairKey
	currentOrder        []pairKey

	sleepStates map[*actor.RigidBody]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
		sleepStates:         make(map[*actor.RigidBody]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// ActivePairs returns how many trigger pairs overlapped during the last flushed step
func (e *Events) ActivePairs() int {
	return len(e.previousOrder)
}

// recordOverlaps is called during substeps with the pairs sorted by body index
func (e *Events) recordOverlaps(pairs []Pair) {
	for _, p := range pairs {
		key := pairKey{bodyA: p.BodyA, bodyB: p.BodyB}
		if e.currentActivePairs[key] {
			continue
		}
		e.currentActivePairs[key] = true
		e.currentOrder = append(e.currentOrder, key)
	}
}

// processTriggerEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processTriggerEvents() {
	var stays []Event

	for _, pair := range e.currentOrder {
		// Skip if both bodies are sleeping, to avoid spamming events
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			continue
		}

		if e.previousActivePairs[pair] {
			stays = append(stays, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}
	e.buffer = append(e.buffer, stays...)

	for _, pair := range e.previousOrder {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	e.previousOrder, e.currentOrder = e.currentOrder, e.previousOrder[:0]
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body]
		if !exists {
			e.sleepStates[body] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body] = false
		}
	}
}

// forget drops every tracked pair and state involving body.
// The exit events of its pairs are queued for the next flush.
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body)

	n := 0
	for _, pair := range e.previousOrder {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			continue
		}
		e.previousOrder[n] = pair
		n++
	}
	e.previousOrder = e.previousOrder[:n]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processTriggerEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
