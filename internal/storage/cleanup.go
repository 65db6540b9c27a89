package storage

import (
	"time"

	"gorm.io/gorm"
)

// StaleGuilds returns the IDs of guilds whose last recorded activity predates
// the cutoff.
func (s *Storage) StaleGuilds(cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.db.Model(&GuildSettings{}).
		Where("last_seen_at < ?", cutoff).
		Pluck("guild_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// PurgeGuild removes every row belonging to a guild in one transaction. Called
// when the bot leaves a guild or the retention policy triggers.
func (s *Storage) PurgeGuild(guildID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&RsvpResponse{},
			&ReminderSend{},
			&DailyPost{},
			&AdminNotification{},
			&ScheduleEntry{},
			&SetupState{},
			&CommandHash{},
			&GuildSettings{},
		} {
			if err := tx.Where("guild_id = ?", guildID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
