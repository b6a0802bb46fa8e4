package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Messages {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.Message{}))
	return NewMessages(gdb)
}

func TestAppend_AssignsIDAndTimestamp(t *testing.T) {
	st := newTestStore(t)

	msg, err := st.Append("id-alice", "alice", "Alice", "hello")
	require.NoError(t, err)

	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, "id-alice", msg.SenderID)
	assert.Equal(t, "alice", msg.SenderLoginID)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, "hello", msg.Text)
}

func TestRecent_AscendingOrder(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := st.Append("id-alice", "alice", "Alice", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	msgs, err := st.Recent(10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID, "ids must ascend")
	}
	assert.Equal(t, "msg 0", msgs[0].Text)
	assert.Equal(t, "msg 4", msgs[4].Text)
}

func TestRecent_ReturnsMostRecentWindow(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 8; i++ {
		_, err := st.Append("id-alice", "alice", "Alice", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	msgs, err := st.Recent(3, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// window keeps the most recent 3, still returned ascending
	assert.Equal(t, "msg 5", msgs[0].Text)
	assert.Equal(t, "msg 7", msgs[2].Text)
}

func TestRecent_BeforeIDPagination(t *testing.T) {
	st := newTestStore(t)

	var pivot uint
	for i := 0; i < 6; i++ {
		msg, err := st.Append("id-alice", "alice", "Alice", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		if i == 3 {
			pivot = msg.ID
		}
	}

	msgs, err := st.Recent(10, pivot)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Less(t, m.ID, pivot)
	}
}

func TestRecent_EmptyStore(t *testing.T) {
	st := newTestStore(t)

	msgs, err := st.Recent(50, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs, "empty history must be an empty slice, not nil")
}

func TestRecent_ClampsUnreasonableLimits(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Append("id-alice", "alice", "Alice", "only one")
	require.NoError(t, err)

	msgs, err := st.Recent(-5, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	msgs, err = st.Recent(10000, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
