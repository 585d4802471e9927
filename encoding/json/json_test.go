package json

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatErrorSyntax(t *testing.T) {
	data := []byte("{\n\t\"address\": :8080\n}")

	var v map[string]interface{}

	err := Unmarshal(data, &v)
	require.Error(t, err)

	err = FormatError(data, err)
	require.Contains(t, err.Error(), "syntax error at line 2")
}

func TestFormatErrorType(t *testing.T) {
	data := []byte("{\n\t\"capacity\": \"many\"\n}")

	var v struct {
		Capacity int `json:"capacity"`
	}

	err := Unmarshal(data, &v)
	require.Error(t, err)

	err = FormatError(data, err)
	require.Contains(t, err.Error(), "expect type 'int' for 'capacity' at line 2")
}

func TestFormatErrorPassthrough(t *testing.T) {
	data := []byte("{}")

	var v map[string]interface{}

	require.NoError(t, Unmarshal(data, &v))
	require.NoError(t, FormatError(data, nil))
}
