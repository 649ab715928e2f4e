package recstore

import (
	"bytes"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqkv/recstore/query"
)

func TestInstrumented_Forwards(t *testing.T) {
	var buf bytes.Buffer
	registry := prometheus.NewRegistry()
	s, err := NewInstrumented(NewMemStore(), log.NewLogfmtLogger(&buf), registry)
	require.NoError(t, err)

	id, err := s.Create(anna())
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	_, err = s.Insert(1, bob())
	assert.ErrorIs(t, err, ErrDuplicateID)

	n, err := s.UpdateWhere(query.Assignments{"age": "31"}, query.Where("id", "1"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.FindBy("firstname", "anna")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int16(31), records[0].Age)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Restore(snap))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.errors.WithLabelValues("insert")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.errors.WithLabelValues("create")))
	assert.Equal(t, 6, testutil.CollectAndCount(s.duration))

	out := buf.String()
	assert.Contains(t, out, "op=create")
	assert.Contains(t, out, "op=insert")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "field=firstname")
}

func TestInstrumented_RegisterTwice(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewInstrumented(NewMemStore(), nil, registry)
	require.NoError(t, err)

	_, err = NewInstrumented(NewMemStore(), nil, registry)
	assert.Error(t, err)
}
