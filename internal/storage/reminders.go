package storage

import "time"

// ReminderAlreadySent reports whether a reminder of this type was recorded for
// the post.
func (s *Storage) ReminderAlreadySent(postID, reminderType string) (bool, error) {
	var count int64
	err := s.db.Model(&ReminderSend{}).
		Where("post_id = ? AND reminder_type = ?", postID, reminderType).
		Count(&count).Error
	return count > 0, err
}

// MarkReminderSent records a dispatched reminder. A duplicate-key insert means
// the reminder was already recorded and is not an error.
func (s *Storage) MarkReminderSent(postID, guildID, reminderType, eventDate string, at time.Time) error {
	err := s.db.Create(&ReminderSend{
		PostID:       postID,
		GuildID:      guildID,
		ReminderType: reminderType,
		EventDate:    eventDate,
		SentAt:       at,
	}).Error
	if IsDuplicate(err) {
		return nil
	}
	return err
}

// RemindersForPost returns the reminder ledger rows for a post.
func (s *Storage) RemindersForPost(postID string) ([]ReminderSend, error) {
	var rows []ReminderSend
	if err := s.db.Where("post_id = ?", postID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
