package repository

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hostelry/service-rooms/internal/domain"
	roomDomain "github.com/hostelry/service-rooms/internal/domain/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRoomsQuery_NoFilter(t *testing.T) {
	query, args, err := selectRoomsQuery(roomDomain.Filter{}, roomDomain.Page{})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "rooms" ORDER BY "id" ASC`, query)
	assert.Empty(t, args)
}

func TestSelectRoomsQuery_RendersConditionsWithPlaceholders(t *testing.T) {
	filter, err := roomDomain.ParseFilter(url.Values{
		"price_from": {"100"},
		"beds_to":    {"3"},
		"vacant":     {""},
	})
	require.NoError(t, err)

	query, args, err := selectRoomsQuery(filter, roomDomain.Page{Number: 3, Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, query, `"price" >= ?`)
	assert.Contains(t, query, `"beds" <= ?`)
	assert.Contains(t, query, `"booked" IS`)
	assert.Contains(t, query, `ORDER BY "id" ASC LIMIT`)
	assert.Contains(t, query, "OFFSET")
	assert.NotContains(t, query, "$1")
	assert.Contains(t, args, float64(100))
}

func TestCountRoomsQuery_HeldBy(t *testing.T) {
	holder := domain.NewIdentity(uuid.New(), "alice")

	query, args, err := countRoomsQuery(roomDomain.HeldBy(holder))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, `SELECT COUNT(*) FROM "rooms" WHERE`), query)
	assert.Contains(t, query, `"booked_by" = ?`)
	require.Len(t, args, 1)
}

func TestFilterExpression_RejectsUnknownComparator(t *testing.T) {
	filter := roomDomain.NewFilter(roomDomain.Condition{Field: roomDomain.FieldPrice, Comparator: "!=", Value: 1.0})

	_, err := filterExpression(filter)
	assert.Error(t, err)
}
