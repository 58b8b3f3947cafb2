package core

import (
	"reflect"
	"sync"
)

type EventContext struct {
	// Path of the asset the event refers to, if any.
	Path string
	// Name of the backend or pipeline the event refers to, if any.
	Name string
	// Free-form payload.
	Data interface{}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// The native device/context was lost or recreated.
	/* Context usage:
	 * Name = backend name
	 */
	EVENT_CODE_CONTEXT_LOST SystemEventCode = 0x02

	// An asset on disk was created, modified or removed.
	/* Context usage:
	 * Path = asset path relative to the asset root
	 */
	EVENT_CODE_ASSET_CHANGED SystemEventCode = 0x03

	// A named pipeline was (re)built.
	/* Context usage:
	 * Name = pipeline name
	 */
	EVENT_CODE_PIPELINE_REBUILT SystemEventCode = 0x04

	// A named pipeline was dropped from the library.
	/* Context usage:
	 * Name = pipeline name
	 * Data = the dropped *gpu.Pipeline
	 */
	EVENT_CODE_PIPELINE_REMOVED SystemEventCode = 0x05

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

// FnOnEvent returns true when the event is handled and must not reach other listeners.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the goroutine that fires them.
type EventBus struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return FALSE.
 */
func (eb *EventBus) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code < 0 || code >= MAX_MESSAGE_CODES || onEvent == nil {
		return false
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, e := range eb.registered[code] {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			LogWarn("event %d: listener already registered", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns FALSE.
 */
func (eb *EventBus) Unregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	// Not found.
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * TRUE, the event is considered handled and is not passed on to any more listeners.
 */
func (eb *EventBus) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	eb.mu.RLock()
	events := append([]*registeredEvent(nil), eb.registered[code]...)
	eb.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

func (eb *EventBus) Shutdown() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.registered = make(map[SystemEventCode][]*registeredEvent)
}

func sameCallback(a, b FnOnEvent) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
