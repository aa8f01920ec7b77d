package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dataaccess/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	bucket, key string
	table       *source.Table
	err         error
}

func (f *fakeObjects) Write(_ context.Context, table *source.Table, bucket string, key string) error {
	f.table, f.bucket, f.key = table, bucket, key
	return f.err
}

type fakeTables struct {
	calls   []string
	table   *source.Table
	name    string
	connErr error
}

func (f *fakeTables) Connect(context.Context) error {
	f.calls = append(f.calls, "connect")
	return f.connErr
}

func (f *fakeTables) Close(context.Context) {
	f.calls = append(f.calls, "close")
}

func (f *fakeTables) Truncate(_ context.Context, tableName string) error {
	f.calls = append(f.calls, "truncate "+tableName)
	return nil
}

func (f *fakeTables) Write(_ context.Context, table *source.Table, tableName string) (int64, error) {
	f.calls = append(f.calls, "write "+tableName)
	f.table, f.name = table, tableName
	return int64(table.Len()), nil
}

func newTestCopier(objects *fakeObjects, tables *fakeTables) *copier {
	c := newCopier(nil)
	c.newObjects = func(context.Context, source.IOOptions) (objectWriter, error) { return objects, nil }
	c.newTables = func(PostgresTarget) tableWriter { return tables }
	return c
}

func writeSalesFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region,amount\nnorth,10\nsouth,\n"), 0o644))
	return path
}

func TestCopyRun(t *testing.T) {
	objects := &fakeObjects{}
	tables := &fakeTables{}
	job := &Job{
		Source:   JobSource{Local: writeSalesFile(t)},
		S3:       &S3Target{Bucket: "exports", Key: "sales.csv"},
		Postgres: &PostgresTarget{DSN: "postgres://localhost/db", Table: "public.sales", Truncate: true},
	}

	require.NoError(t, newTestCopier(objects, tables).run(context.Background(), job))

	assert.Equal(t, "exports", objects.bucket)
	assert.Equal(t, "sales.csv", objects.key)
	require.NotNil(t, objects.table)
	assert.Equal(t, []string{"region", "amount"}, objects.table.Columns)
	assert.Equal(t, [][]string{{"north", "10"}, {"south", ""}}, objects.table.Rows)

	assert.Equal(t, []string{"connect", "truncate public.sales", "write public.sales", "close"}, tables.calls)
	assert.Same(t, objects.table, tables.table)
}

func TestCopyRunErrors(t *testing.T) {
	uploadErr := errors.New("access denied")
	objects := &fakeObjects{err: uploadErr}
	tables := &fakeTables{}
	job := &Job{
		Source:   JobSource{Local: writeSalesFile(t)},
		S3:       &S3Target{Bucket: "exports", Key: "sales.csv"},
		Postgres: &PostgresTarget{DSN: "postgres://localhost/db", Table: "sales"},
	}

	err := newTestCopier(objects, tables).run(context.Background(), job)
	assert.True(t, errors.Is(err, uploadErr))
	assert.Empty(t, tables.calls, "postgres is not touched after a failed upload")

	connErr := errors.New("connection refused")
	tables = &fakeTables{connErr: connErr}
	job.S3 = nil
	err = newTestCopier(objects, tables).run(context.Background(), job)
	assert.True(t, errors.Is(err, connErr))
	assert.Equal(t, []string{"connect"}, tables.calls)

	job.Source = JobSource{Local: filepath.Join(t.TempDir(), "missing.csv")}
	assert.Error(t, newTestCopier(objects, tables).run(context.Background(), job))
}
