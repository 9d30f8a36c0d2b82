package intersection

import (
	"fmt"
	"sync"
)

// Observer represents an entity that observes controller phase changes
type Observer interface {
	// Required methods

	// OnTransition is called when the controller moves to the next phase
	OnTransition(from Phase, to Phase, snap Snapshot)

	// OnPhaseEnter is called after a phase has been entered
	OnPhaseEnter(phase Phase, snap Snapshot)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnPhaseExit is called before the transition out of a phase is reported
	OnPhaseExit(phase Phase, snap Snapshot)

	// OnAdvance is called after every successful Advance, transition or not
	OnAdvance(result AdvanceResult, snap Snapshot)

	// OnError is called when Advance rejects its input or an observer panics
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(from Phase, to Phase, snap Snapshot) {}

// OnPhaseEnter implements the required Observer method
func (o *BaseObserver) OnPhaseEnter(phase Phase, snap Snapshot) {}

// OnPhaseExit implements the optional ExtendedObserver method
func (o *BaseObserver) OnPhaseExit(phase Phase, snap Snapshot) {}

// OnAdvance implements the optional ExtendedObserver method
func (o *BaseObserver) OnAdvance(result AdvanceResult, snap Snapshot) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
	mutex     sync.RWMutex
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// guard runs fn and turns a panic into an OnError notification to the
// panicking observer, if it can receive one.
func guard(observer Observer, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyTransition notifies all observers of a phase transition
func (om *ObserverManager) NotifyTransition(from Phase, to Phase, snap Snapshot) {
	for _, observer := range om.snapshot() {
		guard(observer, "OnTransition", func() { observer.OnTransition(from, to, snap) })
	}
}

// NotifyPhaseEnter notifies all observers of phase entry
func (om *ObserverManager) NotifyPhaseEnter(phase Phase, snap Snapshot) {
	for _, observer := range om.snapshot() {
		guard(observer, "OnPhaseEnter", func() { observer.OnPhaseEnter(phase, snap) })
	}
}

// NotifyPhaseExit notifies extended observers of phase exit
func (om *ObserverManager) NotifyPhaseExit(phase Phase, snap Snapshot) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(observer, "OnPhaseExit", func() { extObs.OnPhaseExit(phase, snap) })
		}
	}
}

// NotifyAdvance notifies extended observers of a completed advance
func (om *ObserverManager) NotifyAdvance(result AdvanceResult, snap Snapshot) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(observer, "OnAdvance", func() { extObs.OnAdvance(result, snap) })
		}
	}
}

// NotifyError notifies extended observers of errors
func (om *ObserverManager) NotifyError(err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}
