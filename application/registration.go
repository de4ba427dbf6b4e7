package application

import "sync/atomic"

// RegistrationState is the device registered flag shared between the topic
// registry and the registration workflow. The registry only creates it.
type RegistrationState struct {
	registered atomic.Bool
}

func (r *RegistrationState) Registered() bool {
	return r.registered.Load()
}

// MarkRegistered sets the flag and reports whether it was previously unset.
func (r *RegistrationState) MarkRegistered() bool {
	return r.registered.CompareAndSwap(false, true)
}

func (r *RegistrationState) Reset() {
	r.registered.Store(false)
}
