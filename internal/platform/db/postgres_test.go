package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), "", nil)
	require.EqualError(t, err, "postgres dsn is required")
}

func TestCloseNilIsNoop(t *testing.T) {
	var p *Postgres
	assert.NoError(t, p.Close())
	assert.NoError(t, (&Postgres{}).Close())
}
