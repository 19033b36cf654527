package models

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserID      string   `dynamodbav:"userId" json:"userId"` // Partition Key
	DisplayName string   `dynamodbav:"displayName,omitempty" json:"displayName,omitempty"`
	Bio         string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Age         int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Gender      string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	Interests   []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	PhotoURL    *string  `dynamodbav:"photoURL,omitempty" json:"photoURL,omitempty"`
}

// Summary projects the profile down to the fields a conversation row needs.
func (p UserProfile) Summary() UserSummary {
	return UserSummary{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
	}
}

// UserSummary is the minimal profile projection used in conversation rows.
type UserSummary struct {
	UserID      string  `dynamodbav:"userId" json:"userId"`
	DisplayName string  `dynamodbav:"displayName" json:"displayName"`
	PhotoURL    *string `dynamodbav:"photoURL,omitempty" json:"photoURL"`
}

// UnknownUser is the fallback summary used when a counterpart profile cannot
// be loaded. A missing profile must not hide the conversation itself.
func UnknownUser(userID string) UserSummary {
	return UserSummary{UserID: userID, DisplayName: "Unknown", PhotoURL: nil}
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "Users"
