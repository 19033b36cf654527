package realtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// StreamSource is a ChangeSource backed by DynamoDB Streams. It tails the
// streams of the Matches and Messages tables and, whenever any record lands,
// re-queries the subscriber's matched rows and emits a fresh snapshot. The
// engine filters for relevance, so the tail itself stays dumb: any write to
// either table is treated as a potential change.
type StreamSource struct {
	Streams      *dynamodbstreams.Client
	Matches      MatchLister
	StreamARNs   []string
	PollInterval time.Duration
}

func (s *StreamSource) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	if len(s.StreamARNs) == 0 {
		return nil, fmt.Errorf("no stream ARNs configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)

	interval := s.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	// Writes arriving while a re-query is in flight collapse into one
	// pending trigger.
	triggers := make(chan struct{}, 1)
	watchErrs := make(chan error, len(s.StreamARNs))

	for _, arn := range s.StreamARNs {
		go s.tailStream(ctx, arn, interval, triggers, watchErrs)
	}

	go func() {
		matches, err := s.Matches.ListMatched(ctx, userID)
		if err != nil {
			sub.fail(ctx, err)
			return
		}
		sub.emit(ctx, matches)

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-watchErrs:
				sub.fail(ctx, err)
				return
			case <-triggers:
				matches, err := s.Matches.ListMatched(ctx, userID)
				if err != nil {
					sub.fail(ctx, err)
					return
				}
				sub.emit(ctx, matches)
			}
		}
	}()

	return sub, nil
}

// tailStream polls every shard of one stream from LATEST and fires a trigger
// whenever records appear.
func (s *StreamSource) tailStream(ctx context.Context, arn string, interval time.Duration, triggers chan<- struct{}, watchErrs chan<- error) {
	iterators := map[string]string{}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		described, err := s.Streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
			StreamArn: aws.String(arn),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case watchErrs <- fmt.Errorf("failed to describe stream '%s': %w", arn, err):
			case <-ctx.Done():
			}
			return
		}

		changed := false
		for _, shard := range described.StreamDescription.Shards {
			shardID := aws.ToString(shard.ShardId)

			iterator, ok := iterators[shardID]
			if !ok {
				out, err := s.Streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
					StreamArn:         aws.String(arn),
					ShardId:           shard.ShardId,
					ShardIteratorType: types.ShardIteratorTypeLatest,
				})
				if err != nil {
					log.Printf("⚠️ Warning: failed to get shard iterator for %s: %v", shardID, err)
					continue
				}
				iterator = aws.ToString(out.ShardIterator)
			}

			records, err := s.Streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
				ShardIterator: aws.String(iterator),
				Limit:         aws.Int32(100),
			})
			if err != nil {
				// Iterators expire after 15 minutes; drop it and re-seek on
				// the next tick.
				log.Printf("⚠️ Warning: failed to read records for shard %s: %v", shardID, err)
				delete(iterators, shardID)
				continue
			}

			if len(records.Records) > 0 {
				changed = true
			}

			if records.NextShardIterator == nil {
				delete(iterators, shardID) // shard closed
				continue
			}
			iterators[shardID] = aws.ToString(records.NextShardIterator)
		}

		if changed {
			select {
			case triggers <- struct{}{}:
			default: // a trigger is already pending
			}
		}
	}
}
