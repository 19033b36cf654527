package models

type Match struct {
	MatchID      string `dynamodbav:"matchId" json:"matchId"`
	ParticipantA string `dynamodbav:"participantA" json:"participantA"`
	ParticipantB string `dynamodbav:"participantB" json:"participantB"`
	Status       string `dynamodbav:"status" json:"status"`       // pending, matched, unmatched
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"` // RFC3339
}

// Involves reports whether userID is one of the two participants.
func (m Match) Involves(userID string) bool {
	return m.ParticipantA == userID || m.ParticipantB == userID
}

// Counterpart returns the participant that is not userID.
func (m Match) Counterpart(userID string) string {
	if m.ParticipantA == userID {
		return m.ParticipantB
	}
	return m.ParticipantA
}

// IsMatched reports whether the match qualifies for a conversation.
func (m Match) IsMatched() bool {
	return m.Status == MatchStatusMatched
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"
