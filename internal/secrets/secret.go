// Package secrets models connector credential handles and their retrieval
// from a secret store.
package secrets

// Secret is a named handle wrapping a credential value. The value is never
// exposed through String to keep it out of logs and reports.
type Secret struct {
	name  string
	value string
}

// New wraps a credential value into a named secret handle.
func New(name, value string) Secret {
	return Secret{name: name, value: value}
}

// Name returns the secret's name.
func (s Secret) Name() string {
	return s.name
}

// Value returns the wrapped credential value.
func (s Secret) Value() string {
	return s.value
}

func (s Secret) String() string {
	return s.name + ": ********"
}
