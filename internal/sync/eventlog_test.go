package syncx_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-gradebook/internal/db"
	syncx "github.com/mind-engage/mindengage-gradebook/internal/sync"
)

func TestEventRepoAppendSince(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	repo := syncx.NewEventRepo(conn)

	for _, k := range []string{"s1/quiz", "s2/quiz", "s1/essay"} {
		e, err := syncx.NewEvent(syncx.TypeGradeRecorded, k, map[string]string{"key": k})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e))
	}

	all, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "local", all[0].SiteID)
	assert.Equal(t, syncx.TypeGradeRecorded, all[0].Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(all[2].DataJSON), &payload))
	assert.Equal(t, "s1/essay", payload["key"])

	rest, err := repo.Since(ctx, all[0].Seq, 1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "s2/quiz", rest[0].Key)
}

func TestNewEventRejectsUnmarshalable(t *testing.T) {
	_, err := syncx.NewEvent(syncx.TypeStandardMapped, "k", make(chan int))
	assert.Error(t, err)
}
