package dbutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalize(t *testing.T) {
	query, args := Finalize("SELECT id FROM accounts WHERE (email=?) LIMIT ?,?", []interface{}{"a@x.com", uint(0), uint(1)})
	require.Equal(t, "SELECT id FROM accounts WHERE (email=$1) LIMIT $2 OFFSET $3", query)
	require.Equal(t, []interface{}{"a@x.com", uint(1), uint(0)}, args)

	query, args = Finalize("UPDATE accounts SET mtime=? WHERE (id=?)", []interface{}{int64(1), "id"})
	require.Equal(t, "UPDATE accounts SET mtime=$1 WHERE (id=$2)", query)
	require.Len(t, args, 2)
}

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.True(t, IsConflict(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(errors.New("boom")))
}
