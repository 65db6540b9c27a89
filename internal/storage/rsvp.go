package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// UpsertRsvp records a member's response to a post. Latest wins: an existing
// (post, user) row has its response type and timestamp overwritten.
func (s *Storage) UpsertRsvp(postID, guildID, userID, responseType string, at time.Time) error {
	if !ValidResponse(responseType) {
		return fmt.Errorf("invalid response type %q", responseType)
	}
	row := RsvpResponse{
		PostID:       postID,
		UserID:       userID,
		GuildID:      guildID,
		ResponseType: responseType,
		RespondedAt:  at,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response_type", "responded_at"}),
	}).Create(&row).Error
}

// RsvpsForPost returns all responses recorded for a post.
func (s *Storage) RsvpsForPost(postID string) ([]RsvpResponse, error) {
	var rows []RsvpResponse
	if err := s.db.Where("post_id = ?", postID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RsvpsForPosts returns all responses across the given posts.
func (s *Storage) RsvpsForPosts(postIDs []string) ([]RsvpResponse, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []RsvpResponse
	if err := s.db.Where("post_id IN ?", postIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
