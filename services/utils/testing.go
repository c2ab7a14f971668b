package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func StructToReader(t *testing.T, s any) io.Reader {
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func DecodeStruct(t *testing.T, r io.Reader, v any) {
	require.NoError(t, json.NewDecoder(r).Decode(v))
}
