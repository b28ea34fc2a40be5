package runtime

import "sync"

// RefCountManager manages Object lifetime via reference counting, the same
// shape as the teacher's interpreter/runtime.RefCountManager generalized
// from DWScript class instances to any heap Object. Prototype links are
// never counted (Object.Prototype is a plain field, not tracked here),
// which is what keeps constructor/prototype cycles from pinning memory.
type RefCountManager interface {
	IncrementRef(v Value) Value
	DecrementRef(v Value) Value
	SetDestructorCallback(cb DestructorCallback)
}

// DestructorCallback runs when an Object's reference count reaches zero.
// The engine registers none itself; one runs only after a caller sets it
// with SetDestructorCallback.
type DestructorCallback func(obj *Object)

type defaultRefCountManager struct {
	mu       sync.RWMutex
	onFinal  DestructorCallback
}

// NewRefCountManager creates a RefCountManager with no destructor callback
// registered.
func NewRefCountManager() RefCountManager {
	return &defaultRefCountManager{}
}

func (m *defaultRefCountManager) IncrementRef(v Value) Value {
	if obj, ok := v.(*Object); ok && obj != nil {
		obj.refCount++
	}
	return v
}

func (m *defaultRefCountManager) DecrementRef(v Value) Value {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return nil
	}
	obj.refCount--
	if obj.refCount <= 0 {
		obj.refCount = 0
		m.mu.RLock()
		cb := m.onFinal
		m.mu.RUnlock()
		if cb != nil {
			cb(obj)
		}
	}
	return nil
}

func (m *defaultRefCountManager) SetDestructorCallback(cb DestructorCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFinal = cb
}
