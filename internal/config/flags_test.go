package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── NetAddress.Set ────────────────────────────────────────────────────────────

func TestNetAddress_Set_Valid(t *testing.T) {
	var a NetAddress
	require.NoError(t, a.Set("localhost:8000"))
	assert.Equal(t, "localhost", a.Host)
	assert.Equal(t, 8000, a.Port)
}

func TestNetAddress_Set_ValidIP(t *testing.T) {
	var a NetAddress
	require.NoError(t, a.Set("127.0.0.1:9090"))
	assert.Equal(t, "127.0.0.1", a.Host)
	assert.Equal(t, 9090, a.Port)
}

func TestNetAddress_Set_MissingPort(t *testing.T) {
	var a NetAddress
	require.Error(t, a.Set("localhost"))
}

func TestNetAddress_Set_NonNumericPort(t *testing.T) {
	var a NetAddress
	require.Error(t, a.Set("localhost:http"))
}

func TestNetAddress_Set_NegativePort(t *testing.T) {
	var a NetAddress
	require.Error(t, a.Set("localhost:-1"))
}

func TestNetAddress_Set_BadIP(t *testing.T) {
	var a NetAddress
	require.Error(t, a.Set("999.999.0.1:8000"))
}

// ── NetAddress.String ─────────────────────────────────────────────────────────

func TestNetAddress_String_Empty(t *testing.T) {
	var a NetAddress
	assert.Equal(t, "", a.String())
}

func TestNetAddress_String_Populated(t *testing.T) {
	a := NetAddress{Host: "localhost", Port: 8000}
	assert.Equal(t, "localhost:8000", a.String())
}
