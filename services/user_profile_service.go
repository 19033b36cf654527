package services

import (
	"context"
	"fmt"

	"emberly_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserProfileService struct
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetProfile retrieves a full user profile by ID
func (s *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for user '%s': %w", userID, err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile for user '%s': %w", userID, err)
	}
	return &profile, nil
}

// GetUserSummary retrieves the minimal projection used in conversation rows
func (s *UserProfileService) GetUserSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := profile.Summary()
	return &summary, nil
}

// PutProfile stores a user profile
func (s *UserProfileService) PutProfile(ctx context.Context, profile models.UserProfile) error {
	if err := s.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		return fmt.Errorf("failed to store profile for user '%s': %w", profile.UserID, err)
	}
	return nil
}
