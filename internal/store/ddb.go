// Package store writes derived player rows to DynamoDB. It is a write-only
// sink for downstream analysis: nothing in the extraction pipeline reads it
// back, so every run still re-derives from freshly fetched pages.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cbbstats/kenpom-scraper/internal/kenpom"
)

// DynamoDBAPI is the slice of the DynamoDB client the sink needs.
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// PutPlayerRows writes every successful team's player records.
// PK=Season#Team, SK=player name; the flattened feature fields become item
// attributes, numeric where they parse.
func PutPlayerRows(ctx context.Context, ddb DynamoDBAPI, table string, season int, results []kenpom.TeamResult) error {
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)
	seasonStr := strconv.Itoa(season)

	var reqs []types.WriteRequest
	flush := func() error {
		if len(reqs) == 0 {
			return nil
		}
		if err := batchWriteWithRetry(ctx, ddb, table, reqs); err != nil {
			return fmt.Errorf("batch write player rows: %w", err)
		}
		reqs = nil
		return nil
	}

	for _, r := range results {
		if r.Players == nil {
			continue
		}
		for _, p := range r.Players.Players {
			if p.Name == "" {
				continue
			}
			item := map[string]types.AttributeValue{
				"SeasonTeam": &types.AttributeValueMemberS{Value: seasonStr + "#" + r.Team},
				"Player":     &types.AttributeValueMemberS{Value: p.Name},
				"Season":     &types.AttributeValueMemberS{Value: seasonStr},
				"Team":       &types.AttributeValueMemberS{Value: r.Team},
				"UpdatedAt":  &types.AttributeValueMemberN{Value: now},
			}
			for k, v := range p.Fields {
				if k == "Name" || v == "" {
					continue
				}
				if _, err := strconv.ParseFloat(v, 64); err == nil {
					item[k] = &types.AttributeValueMemberN{Value: v}
				} else {
					item[k] = &types.AttributeValueMemberS{Value: v}
				}
			}
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
			if len(reqs) == maxBatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxRetries = 5
	for attempt := 0; ; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		unprocessed := out.UnprocessedItems[table]
		if len(unprocessed) == 0 {
			return nil
		}
		if attempt == maxRetries {
			return fmt.Errorf("%d items unprocessed after %d retries", len(unprocessed), maxRetries)
		}
		select {
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		input.RequestItems = map[string][]types.WriteRequest{table: unprocessed}
	}
}
