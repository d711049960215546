package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbbstats/kenpom-scraper/internal/kenpom"
)

type fakeDDB struct {
	calls       []*dynamodb.BatchWriteItemInput
	unprocessed int // echo this many items back on the first call
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.calls = append(f.calls, params)
	out := &dynamodb.BatchWriteItemOutput{}
	if len(f.calls) == 1 && f.unprocessed > 0 {
		for _, reqs := range params.RequestItems {
			n := f.unprocessed
			if n > len(reqs) {
				n = len(reqs)
			}
			out.UnprocessedItems = map[string][]types.WriteRequest{"players": reqs[:n]}
		}
	}
	return out, nil
}

func resultWithPlayers(team string, n int) kenpom.TeamResult {
	tp := &kenpom.TeamPlayers{Team: team}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Player %d", i)
		tp.Players = append(tp.Players, kenpom.PlayerRecord{
			Name: name,
			Fields: map[string]string{
				"Name":         name,
				"Min":          "25.5",
				"NextOpponent": "Ohio St.",
				"Blank":        "",
			},
		})
	}
	return kenpom.TeamResult{Team: team, Players: tp}
}

func TestPutPlayerRowsBatches(t *testing.T) {
	ddb := &fakeDDB{}
	results := []kenpom.TeamResult{
		resultWithPlayers("Maryland", 20),
		{Team: "Rutgers", Err: assert.AnError}, // failed team contributes nothing
		resultWithPlayers("Ohio St.", 10),
	}

	err := PutPlayerRows(context.Background(), ddb, "players", 2024, results)
	require.NoError(t, err)

	// 30 rows split at the 25-item service limit
	require.Len(t, ddb.calls, 2)
	assert.Len(t, ddb.calls[0].RequestItems["players"], 25)
	assert.Len(t, ddb.calls[1].RequestItems["players"], 5)

	item := ddb.calls[0].RequestItems["players"][0].PutRequest.Item
	pk, ok := item["SeasonTeam"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "2024#Maryland", pk.Value)
	_, ok = item["Player"].(*types.AttributeValueMemberS)
	assert.True(t, ok)

	// numeric-looking fields store as numbers, the rest as strings
	min, ok := item["Min"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "25.5", min.Value)
	opp, ok := item["NextOpponent"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "Ohio St.", opp.Value)

	// empty fields and the redundant Name field are dropped
	_, ok = item["Blank"]
	assert.False(t, ok)
	_, ok = item["Name"]
	assert.False(t, ok)
}

func TestPutPlayerRowsRetriesUnprocessed(t *testing.T) {
	ddb := &fakeDDB{unprocessed: 3}
	results := []kenpom.TeamResult{resultWithPlayers("Maryland", 10)}

	err := PutPlayerRows(context.Background(), ddb, "players", 2024, results)
	require.NoError(t, err)

	require.Len(t, ddb.calls, 2)
	assert.Len(t, ddb.calls[0].RequestItems["players"], 10)
	assert.Len(t, ddb.calls[1].RequestItems["players"], 3, "only the unprocessed slice is resent")
}

func TestPutPlayerRowsNothingToWrite(t *testing.T) {
	ddb := &fakeDDB{}
	err := PutPlayerRows(context.Background(), ddb, "players", 2024, []kenpom.TeamResult{
		{Team: "Rutgers", Err: assert.AnError},
	})
	require.NoError(t, err)
	assert.Empty(t, ddb.calls)
}
