package secret_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/crates-smoke/internal/secret"
)

const (
	testCredentialConstant = "cio_abcdef0123456789"
)

type secretCarrier struct {
	Name  string
	Token secret.Value
}

func TestValueRedactsUnderEveryFormattingPath(testInstance *testing.T) {
	value := secret.New(testCredentialConstant)
	carrier := secretCarrier{Name: "crates-staging-test-tb", Token: value}

	testCases := []struct {
		name     string
		rendered func() string
	}{
		{name: "verb_v", rendered: func() string { return fmt.Sprintf("%v", value) }},
		{name: "verb_plus_v", rendered: func() string { return fmt.Sprintf("%+v", carrier) }},
		{name: "verb_sharp_v", rendered: func() string { return fmt.Sprintf("%#v", carrier) }},
		{name: "verb_s", rendered: func() string { return fmt.Sprintf("%s", value) }},
		{name: "verb_q", rendered: func() string { return fmt.Sprintf("%q", value) }},
		{name: "verb_x", rendered: func() string { return fmt.Sprintf("%x", value) }},
		{name: "json", rendered: func() string {
			encoded, encodeError := json.Marshal(carrier)
			require.NoError(testInstance, encodeError)
			return string(encoded)
		}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rendered := testCase.rendered()
			require.NotContains(testInstance, rendered, testCredentialConstant)
			require.Contains(testInstance, rendered, "[REDACTED]")
		})
	}
}

func TestValueExposesCredentialExplicitly(testInstance *testing.T) {
	value := secret.New(testCredentialConstant)
	require.Equal(testInstance, testCredentialConstant, value.Expose())
	require.False(testInstance, value.IsEmpty())

	emptyValue := secret.Value{}
	require.True(testInstance, emptyValue.IsEmpty())
	require.Empty(testInstance, emptyValue.String())
}
