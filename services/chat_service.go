package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"emberly_server/models"
	"emberly_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ChatService struct
type ChatService struct {
	Dynamo *DynamoService
}

// GetMessagesByMatchID fetches the latest messages for a given matchId sorted by createdAt (latest first),
// then reverses the order before returning, so the latest message appears at the bottom in UI.
func (s *ChatService) GetMessagesByMatchID(ctx context.Context, matchID string, limit int) ([]models.Message, error) {
	log.Printf("🔍 Fetching latest %d messages for matchId: %s", limit, matchID)

	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	expressionNames := map[string]string{
		"#matchId": "matchId", // Prevents DynamoDB reserved word conflicts
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, int32(limit), true)
	if err != nil {
		log.Printf("❌ Error querying messages: %v", err)
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		log.Printf("❌ Error unmarshalling messages: %v", err)
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// Reverse the messages so the latest appears at the bottom in UI
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// SendMessage stores a new message in the Messages table
func (s *ChatService) SendMessage(ctx context.Context, message models.Message) error {
	message.ReadAt = nil // New messages start unread

	log.Printf("📩 Storing message %s for matchId: %s", message.MessageID, message.MatchID)

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		log.Printf("❌ Failed to store message: %v", err)
		return fmt.Errorf("failed to store message: %w", err)
	}

	return nil
}

// GetLastMessage returns the most recent message for a match, or nil when the
// match has no messages yet.
func (s *ChatService) GetLastMessage(ctx context.Context, matchID string) (*models.Message, error) {
	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	expressionNames := map[string]string{
		"#matchId": "matchId",
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, 1, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last message for match '%s': %w", matchID, err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var message models.Message
	if err := attributevalue.UnmarshalMap(items[0], &message); err != nil {
		return nil, fmt.Errorf("failed to parse last message for match '%s': %w", matchID, err)
	}
	return &message, nil
}

// CountUnread returns the number of unread messages addressed to recipientID
// within a match.
func (s *ChatService) CountUnread(ctx context.Context, matchID string, recipientID string) (int, error) {
	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId":     &types.AttributeValueMemberS{Value: matchID},
		":recipientId": &types.AttributeValueMemberS{Value: recipientID},
	}
	expressionNames := map[string]string{
		"#matchId": "matchId",
	}
	filterExpression := "recipientId = :recipientId AND attribute_not_exists(readAt)"

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, filterExpression)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages for match '%s': %w", matchID, err)
	}
	return len(items), nil
}

// MarkMessagesAsRead stamps readAt on every unread message addressed to userID
// within a match.
func (s *ChatService) MarkMessagesAsRead(ctx context.Context, matchID string, userID string) error {
	log.Printf("🔄 Marking messages as read for matchId: %s where recipient is %s", matchID, userID)

	keyCondition := "#matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	expressionNames := map[string]string{
		"#matchId": "matchId",
	}

	items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, 100)
	if err != nil {
		log.Printf("❌ Error fetching messages: %v", err)
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	updated := 0
	for _, item := range items {
		recipient := utils.ExtractString(item, "recipientId")
		if recipient != userID {
			continue
		}
		if utils.ExtractString(item, "readAt") != "" {
			continue // already read
		}

		createdAt := utils.ExtractString(item, "createdAt")
		key := map[string]types.AttributeValue{
			"matchId":   &types.AttributeValueMemberS{Value: matchID},
			"createdAt": &types.AttributeValueMemberS{Value: createdAt}, // sort key
		}
		updateExpression := "SET readAt = :readAt"
		updateValues := map[string]types.AttributeValue{
			":readAt": &types.AttributeValueMemberS{Value: now},
		}

		if _, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, updateValues, nil); err != nil {
			log.Printf("❌ Failed to update message at %s: %v", createdAt, err)
			continue
		}
		updated++
	}

	log.Printf("✅ Marked %d messages as read for matchId: %s", updated, matchID)
	return nil
}
