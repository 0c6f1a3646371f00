package secret

import (
	"encoding/json"
	"fmt"
)

const (
	redactedPlaceholderConstant = "[REDACTED]"
	emptyPlaceholderConstant    = ""
)

// Value wraps a credential. The zero value is an empty credential.
type Value struct {
	credential string
}

// New wraps the supplied credential.
func New(credential string) Value {
	return Value{credential: credential}
}

// Expose returns the raw credential. Call it only where the credential leaves the process.
func (value Value) Expose() string {
	return value.credential
}

// IsEmpty reports whether no credential is held.
func (value Value) IsEmpty() bool {
	return len(value.credential) == 0
}

// String implements fmt.Stringer with a redacted placeholder.
func (value Value) String() string {
	if value.IsEmpty() {
		return emptyPlaceholderConstant
	}
	return redactedPlaceholderConstant
}

// GoString implements fmt.GoStringer with a redacted placeholder.
func (value Value) GoString() string {
	return value.String()
}

// Format implements fmt.Formatter so that no verb prints the credential.
func (value Value) Format(state fmt.State, verb rune) {
	_, _ = fmt.Fprint(state, value.String())
}

// MarshalJSON implements json.Marshaler with a redacted placeholder.
func (value Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(value.String())
}

// MarshalText implements encoding.TextMarshaler with a redacted placeholder.
func (value Value) MarshalText() ([]byte, error) {
	return []byte(value.String()), nil
}
