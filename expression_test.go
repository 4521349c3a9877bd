package earthengine_test

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-earthengine"
)

func TestValue_MarshalJSON(t *testing.T) {
	for _, tc := range []struct {
		name     string
		value    *earthengine.Value
		expected string
	}{
		{
			name:     "constant_string",
			value:    earthengine.Constant("NASA/TEMPO/NO2_L3"),
			expected: `{"constantValue":"NASA/TEMPO/NO2_L3"}`,
		},
		{
			name:     "constant_null",
			value:    earthengine.Constant(nil),
			expected: `{"constantValue":null}`,
		},
		{
			name:     "invocation_without_arguments",
			value:    earthengine.Invoke("Reducer.mean", nil),
			expected: `{"functionInvocationValue":{"functionName":"Reducer.mean"}}`,
		},
		{
			name: "invocation_omits_nil_arguments",
			value: earthengine.Invoke("Collection.limit", map[string]*earthengine.Value{
				"key":   earthengine.Constant("system:time_start"),
				"limit": nil,
			}),
			expected: `{"functionInvocationValue":{"functionName":"Collection.limit","arguments":{"key":{"constantValue":"system:time_start"}}}}`,
		},
		{
			name:     "empty_array",
			value:    earthengine.Array(),
			expected: `{"arrayValue":{"values":[]}}`,
		},
		{
			name:     "array",
			value:    earthengine.Array(earthengine.Constant("a"), earthengine.Constant("b")),
			expected: `{"arrayValue":{"values":[{"constantValue":"a"},{"constantValue":"b"}]}}`,
		},
		{
			name:     "empty_dictionary",
			value:    earthengine.DictionaryOf(nil),
			expected: `{"dictionaryValue":{"values":{}}}`,
		},
		{
			name: "dictionary",
			value: earthengine.DictionaryOf(map[string]*earthengine.Value{
				"scale": earthengine.Constant(1000),
			}),
			expected: `{"dictionaryValue":{"values":{"scale":{"constantValue":1000}}}}`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := json.Marshal(tc.value)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, string(actual))
		})
	}
}

func TestNewExpression(t *testing.T) {
	actual, err := json.Marshal(earthengine.NewExpression(earthengine.Constant(true)))
	assert.NoError(t, err)
	assert.Equal(t, `{"result":"0","values":{"0":{"constantValue":true}}}`, string(actual))
}
