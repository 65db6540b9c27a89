package storage

import "gorm.io/gorm"

// CreateDailyPost inserts a post ledger row. A duplicate-key error means
// another tick already posted for this (guild, date); callers check with
// IsDuplicate and treat it as success.
func (s *Storage) CreateDailyPost(p *DailyPost) error {
	return s.db.Create(p).Error
}

// DailyPostForDate returns the post for (guild, date), or ErrNotFound.
func (s *Storage) DailyPostForDate(guildID, date string) (*DailyPost, error) {
	var p DailyPost
	err := s.db.Where("guild_id = ? AND event_date = ?", guildID, date).Take(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// PostByID returns a post by its id, or ErrNotFound.
func (s *Storage) PostByID(id string) (*DailyPost, error) {
	var p DailyPost
	if err := s.db.Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// PostsInRange returns a guild's posts with from <= event_date <= to, ordered
// by date.
func (s *Storage) PostsInRange(guildID, from, to string) ([]DailyPost, error) {
	var posts []DailyPost
	err := s.db.
		Where("guild_id = ? AND event_date >= ? AND event_date <= ?", guildID, from, to).
		Order("event_date").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DeleteDailyPost removes a post and its dependent RSVP and reminder rows in
// one transaction. Used by forced reposts; historical rows are otherwise kept.
func (s *Storage) DeleteDailyPost(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&RsvpResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&ReminderSend{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&DailyPost{}).Error
	})
}

// ClearMessageRef drops the Discord message reference from a post once the
// message itself has been cleaned up. The ledger row stays for reporting.
func (s *Storage) ClearMessageRef(id string) error {
	return s.db.Model(&DailyPost{}).Where("id = ?", id).Update("message_id", "").Error
}

// PostsWithMessagesBefore returns posts older than the cutoff date that still
// reference a Discord message.
func (s *Storage) PostsWithMessagesBefore(cutoffDate string) ([]DailyPost, error) {
	var posts []DailyPost
	err := s.db.
		Where("event_date < ? AND message_id <> ''", cutoffDate).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
