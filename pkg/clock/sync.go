package clock

// Configured is implemented by clients that expose their clock configuration. A nil Setting
// means the client has none.
type Configured interface {
	ClockSetting() *Setting
}

// Unwrapper is implemented by document-style clients layered over another service client.
type Unwrapper interface {
	Unwrap() any
}

// Sync rebinds the client's clock setting to shared so that all synced clients observe one
// offset. Document-style clients are unwrapped first. Clients without a clock configuration
// are left untouched and Sync reports false.
func Sync(client any, shared *Offset) bool {
	if client == nil || shared == nil {
		return false
	}

	if wrapper, ok := client.(Unwrapper); ok {
		client = wrapper.Unwrap()
	}

	configured, ok := client.(Configured)
	if !ok {
		return false
	}

	setting := configured.ClockSetting()
	if setting == nil {
		return false
	}

	setting.Bind(shared)

	return true
}
