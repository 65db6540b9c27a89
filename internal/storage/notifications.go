package storage

import "time"

// NoticeAlreadySent reports whether an admin notification of this type already
// went out for (guild, date).
func (s *Storage) NoticeAlreadySent(guildID, date, noticeType string) (bool, error) {
	var count int64
	err := s.db.Model(&AdminNotification{}).
		Where("guild_id = ? AND notification_date = ? AND notification_type = ?", guildID, date, noticeType).
		Count(&count).Error
	return count > 0, err
}

// MarkNoticeSent records an admin notification, capping it at one per (guild,
// date, type). Duplicate-key inserts are not errors.
func (s *Storage) MarkNoticeSent(guildID, date, noticeType string, at time.Time) error {
	err := s.db.Create(&AdminNotification{
		GuildID:          guildID,
		NotificationDate: date,
		NotificationType: noticeType,
		SentAt:           at,
	}).Error
	if IsDuplicate(err) {
		return nil
	}
	return err
}
