package hook

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator replaces the registration ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*Registration)

// WithPriority sets the registration priority. Lower values run first.
func WithPriority(p int) RegisterOption {
	return func(reg *Registration) {
		reg.Priority = p
	}
}

// WithAcceptedArgs limits how many positional arguments the handler receives.
// For filters the value counts as the first argument. Negative means all.
func WithAcceptedArgs(n int) RegisterOption {
	return func(reg *Registration) {
		if n < 0 {
			n = AllArgs
		}
		reg.AcceptedArgs = n
	}
}
