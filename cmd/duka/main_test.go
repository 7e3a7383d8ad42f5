package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestPhoneCheck(t *testing.T) {
	out := run(t, "phone:check", "+254 712 345 678", "12345")
	assert.Contains(t, out, "0712345678")
	assert.Contains(t, out, "invalid number format")
}

func TestPhoneCheckNeedsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"phone:check"})
	assert.Error(t, root.Execute())
}

func TestRouteList(t *testing.T) {
	out := run(t, "route:list")
	for _, want := range []string{"/add_to_cart", "/checkout", "/admin/products/{id}", "cart.count", "/metrics"} {
		assert.Contains(t, out, want)
	}
}
