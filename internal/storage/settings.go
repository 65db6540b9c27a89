package storage

import (
	"errors"
	"time"
)

// Defaults for lazily created settings rows.
const (
	DefaultEventTime   = "20:00"
	DefaultPostingTime = "09:00"
	DefaultTimezone    = "America/New_York"
)

func defaultSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:        guildID,
		EventTime:      DefaultEventTime,
		PostingTime:    DefaultPostingTime,
		Timezone:       DefaultTimezone,
		AutoDailyPosts: true,
		LastSeenAt:     time.Now().UTC(),
	}
}

// Settings returns the guild's settings row, or ErrNotFound when the guild was
// never configured.
func (s *Storage) Settings(guildID string) (*GuildSettings, error) {
	var gs GuildSettings
	if err := s.db.Where("guild_id = ?", guildID).Take(&gs).Error; err != nil {
		return nil, notFound(err)
	}
	return &gs, nil
}

// UpdateSettings applies mutate to the guild's settings, creating the row with
// defaults first if needed. Last write wins; there is no merge of concurrent
// edits.
func (s *Storage) UpdateSettings(guildID string, mutate func(*GuildSettings)) error {
	gs, err := s.Settings(guildID)
	if errors.Is(err, ErrNotFound) {
		gs = defaultSettings(guildID)
		if err := s.db.Create(gs).Error; err != nil && !IsDuplicate(err) {
			return err
		}
		// Re-read in case another writer created the row first.
		if gs, err = s.Settings(guildID); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	mutate(gs)
	return s.db.Save(gs).Error
}

// AllSettings returns every guild's settings; the evaluators iterate this each
// tick.
func (s *Storage) AllSettings() ([]GuildSettings, error) {
	var all []GuildSettings
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// TouchGuild records guild activity for retention purposes. Missing rows are
// ignored: a guild with no settings has nothing to retain.
func (s *Storage) TouchGuild(guildID string) error {
	return s.db.Model(&GuildSettings{}).
		Where("guild_id = ?", guildID).
		Update("last_seen_at", time.Now().UTC()).Error
}
