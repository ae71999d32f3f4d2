package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionAndRecords(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "recordcol v"+version)

	out, err = run(t, "records")
	require.NoError(t, err)
	for _, name := range []string{"Customer", "Line", "Order", "OrderSummary"} {
		assert.Contains(t, out, name)
	}
}

func TestSchemaCommands(t *testing.T) {
	out, err := run(t, "schema", "print", "Order")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "message Order {"), out)
	assert.Contains(t, out, "required binary id (STRING);")

	out, err = run(t, "--naming", "SNAKE_CASE", "schema", "print", "--json", "Order")
	require.NoError(t, err)
	assert.Contains(t, out, `"placed_at"`)

	out, err = run(t, "schema", "avro", "--namespace", "shop", "Order")
	require.NoError(t, err)
	assert.Contains(t, out, `"namespace":"shop"`)

	out, err = run(t, "schema", "parquet", "Order")
	require.NoError(t, err)
	assert.Contains(t, out, "Order")

	_, err = run(t, "schema", "print", "Unknown")
	assert.ErrorContains(t, err, "record type Unknown not found")

	_, err = run(t, "--list-level", "FOUR", "schema", "print", "Order")
	assert.Error(t, err)
}

func TestAvroRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.avro")
	_, err := run(t, "write", "avro", "Order", "-o", path)
	require.NoError(t, err)

	out, err := run(t, "read", "avro", path, "--as", "Order")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"ID":"o-1"`)
	assert.Contains(t, lines[0], `"SKU":"ink"`)

	out, err = run(t, "read", "avro", path, "--as", "OrderSummary")
	require.NoError(t, err)
	assert.Equal(t, `{"ID":"o-1","Status":"SHIPPED"}`+"\n"+`{"ID":"o-2","Status":"PENDING"}`+"\n", out)

	_, err = run(t, "--ignore-unknown-fields=false", "read", "avro", path, "--as", "Line")
	assert.ErrorContains(t, err, `has no column "sku"`)
}

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.rcj")
	_, err := run(t, "--list-level", "TWO", "write", "journal", "Customer", "-o", path)
	require.NoError(t, err)

	out, err := run(t, "journal", "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "message Customer {")
	assert.Contains(t, out, "record 1")
	assert.Contains(t, out, "start_field name 0")

	out, err = run(t, "--dictionary", "read", "journal", path, "--as", "Customer")
	require.NoError(t, err)
	assert.Contains(t, out, `"Tags":["vip","early"]`)
	assert.Contains(t, out, `"Name":"Grace"`)
}

func TestParquetSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.parquet")
	_, err := run(t, "schema", "parquet", "Order", "-o", path)
	require.NoError(t, err)

	out, err := run(t, "read", "parquet", path, "--as", "OrderSummary")
	require.NoError(t, err)
	assert.Contains(t, out, "rows: 0")
	assert.Contains(t, out, "required binary id (STRING);")
	assert.NotContains(t, out, "customer")
}

func TestSchemaRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.json")

	_, err := run(t, "schema", "history", "Order")
	assert.ErrorContains(t, err, "no schema registry configured")

	out, err := run(t, "--schema-registry", path, "schema", "register", "Order")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Order version 1 "), out)

	out, err = run(t, "--schema-registry", path, "schema", "register", "Order")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Order version 1 "), out)

	_, err = run(t, "--schema-registry", path, "--naming", "SNAKE_CASE", "schema", "register", "Order")
	assert.ErrorContains(t, err, "incompatible with version 1")

	_, err = run(t, "--schema-registry", path, "--compatibility", "NONE", "--naming", "SNAKE_CASE", "schema", "register", "Order")
	require.NoError(t, err)

	out, err = run(t, "--schema-registry", path, "schema", "history", "Order")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1 ")
	assert.Contains(t, out, "version 2 ")
	assert.Contains(t, out, "ADD_FIELD placed_at: required int64 placed_at;")
	assert.Contains(t, out, "REMOVE_FIELD placedAt: required int64 placedAt;")
}
