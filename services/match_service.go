package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"emberly_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// GSIs on the Matches table keyed by each participant column.
const (
	participantAIndex = "participantA-index"
	participantBIndex = "participantB-index"
)

// MatchService struct
type MatchService struct {
	Dynamo *DynamoService
}

// CreateMatch creates a matched record between two users
func (s *MatchService) CreateMatch(ctx context.Context, participantA, participantB string) (models.Match, error) {
	match := models.Match{
		MatchID:      uuid.New().String(),
		ParticipantA: participantA,
		ParticipantB: participantB,
		Status:       models.MatchStatusMatched,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return models.Match{}, fmt.Errorf("failed to create match: %w", err)
	}

	log.Printf("✅ Created match %s between %s and %s", match.MatchID, participantA, participantB)
	return match, nil
}

// Unmatch flips a match's status to unmatched. The conversation disappears on
// the next snapshot; no separate unmatch event is tracked.
func (s *MatchService) Unmatch(ctx context.Context, matchID string) error {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	updateExpression := "SET #status = :status"
	expressionValues := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: models.MatchStatusUnmatched},
	}
	expressionNames := map[string]string{
		"#status": "status", // status is a DynamoDB reserved word
	}

	if _, err := s.Dynamo.UpdateItem(ctx, models.MatchesTable, updateExpression, key, expressionValues, expressionNames); err != nil {
		return fmt.Errorf("failed to unmatch '%s': %w", matchID, err)
	}

	log.Printf("💔 Match %s unmatched", matchID)
	return nil
}

// ListMatched returns every matched record involving userID. The Matches table
// is keyed by matchId, so lookups by participant go through one GSI per
// participant column.
func (s *MatchService) ListMatched(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match

	for _, q := range []struct {
		index  string
		column string
	}{
		{participantAIndex, "participantA"},
		{participantBIndex, "participantB"},
	} {
		keyCondition := fmt.Sprintf("%s = :userId", q.column)
		expressionValues := map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}

		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, q.index, keyCondition, expressionValues, nil, 100)
		if err != nil {
			log.Printf("❌ Error querying %s: %v", q.index, err)
			return nil, fmt.Errorf("failed to fetch matches for user '%s': %w", userID, err)
		}

		for _, item := range items {
			var match models.Match
			if err := attributevalue.UnmarshalMap(item, &match); err != nil {
				log.Printf("⚠️ Warning: failed to parse match: %v", err)
				continue
			}
			if match.IsMatched() {
				matches = append(matches, match)
			}
		}
	}

	log.Printf("✅ Found %d matches for userId: %s", len(matches), userID)
	return matches, nil
}
