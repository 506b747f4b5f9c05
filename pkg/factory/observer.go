package factory

// Observer receives one event per constructor call.
type Observer interface {
	// ObserveConstruct is called when a new client was built.
	ObserveConstruct(service string)
	// ObserveReuse is called when a memoized client was returned.
	ObserveReuse(service string)
	// ObserveFailure is called when building a client failed.
	ObserveFailure(service string)
}

type nopObserver struct{}

func (nopObserver) ObserveConstruct(string) {}

func (nopObserver) ObserveReuse(string) {}

func (nopObserver) ObserveFailure(string) {}
