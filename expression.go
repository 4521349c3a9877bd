package earthengine

import "encoding/json"

type valueKind int

const (
	constantValue valueKind = iota
	functionInvocationValue
	arrayValue
	dictionaryValue
)

// A Value is a node in an Earth Engine expression graph.
type Value struct {
	kind         valueKind
	constant     any
	functionName string
	arguments    map[string]*Value
	values       []*Value
}

// An Expression is a complete expression graph as sent to the value:compute
// method.
type Expression struct {
	Result string            `json:"result"`
	Values map[string]*Value `json:"values"`
}

// Constant returns a constant value. v must be JSON-encodable.
func Constant(v any) *Value {
	return &Value{
		kind:     constantValue,
		constant: v,
	}
}

// Invoke returns the value of the server-side function functionName applied
// to arguments. Nil arguments are omitted.
func Invoke(functionName string, arguments map[string]*Value) *Value {
	return &Value{
		kind:         functionInvocationValue,
		functionName: functionName,
		arguments:    arguments,
	}
}

// Array returns an array of values.
func Array(values ...*Value) *Value {
	return &Value{
		kind:   arrayValue,
		values: values,
	}
}

// DictionaryOf returns a dictionary of values.
func DictionaryOf(values map[string]*Value) *Value {
	return &Value{
		kind:      dictionaryValue,
		arguments: values,
	}
}

// FunctionName returns v's function name, or the empty string if v is not a
// function invocation.
func (v *Value) FunctionName() string {
	return v.functionName
}

// Argument returns v's argument called name.
func (v *Value) Argument(name string) *Value {
	return v.arguments[name]
}

// NewExpression returns a new Expression whose result is result. Subgraphs
// are nested inline so the expression contains a single top-level value.
func NewExpression(result *Value) *Expression {
	return &Expression{
		Result: "0",
		Values: map[string]*Value{
			"0": result,
		},
	}
}

// MarshalJSON implements encoding/json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case functionInvocationValue:
		type functionInvocation struct {
			FunctionName string            `json:"functionName"`
			Arguments    map[string]*Value `json:"arguments,omitempty"`
		}
		return json.Marshal(struct {
			FunctionInvocationValue functionInvocation `json:"functionInvocationValue"`
		}{
			FunctionInvocationValue: functionInvocation{
				FunctionName: v.functionName,
				Arguments:    nonNilValues(v.arguments),
			},
		})
	case arrayValue:
		type array struct {
			Values []*Value `json:"values"`
		}
		values := v.values
		if values == nil {
			values = []*Value{}
		}
		return json.Marshal(struct {
			ArrayValue array `json:"arrayValue"`
		}{
			ArrayValue: array{Values: values},
		})
	case dictionaryValue:
		type dictionary struct {
			Values map[string]*Value `json:"values"`
		}
		values := nonNilValues(v.arguments)
		if values == nil {
			values = map[string]*Value{}
		}
		return json.Marshal(struct {
			DictionaryValue dictionary `json:"dictionaryValue"`
		}{
			DictionaryValue: dictionary{Values: values},
		})
	default:
		return json.Marshal(struct {
			ConstantValue any `json:"constantValue"`
		}{
			ConstantValue: v.constant,
		})
	}
}

func nonNilValues(values map[string]*Value) map[string]*Value {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]*Value, len(values))
	for key, value := range values {
		if value != nil {
			result[key] = value
		}
	}
	return result
}
