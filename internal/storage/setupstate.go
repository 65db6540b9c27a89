package storage

import (
	"time"

	"gorm.io/gorm/clause"
)

// SetupStateFor returns the guild's in-progress setup, or ErrNotFound. Expired
// rows are reported as not found; the cleanup loop removes them later.
func (s *Storage) SetupStateFor(guildID string, now time.Time) (*SetupState, error) {
	var st SetupState
	if err := s.db.Where("guild_id = ?", guildID).Take(&st).Error; err != nil {
		return nil, notFound(err)
	}
	if !st.ExpiresAt.IsZero() && now.After(st.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &st, nil
}

// PutSetupState creates or advances the guild's setup progress.
func (s *Storage) PutSetupState(guildID string, dayIndex int, expiresAt time.Time) error {
	st := SetupState{GuildID: guildID, DayIndex: dayIndex, ExpiresAt: expiresAt}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"day_index", "expires_at", "updated_at"}),
	}).Create(&st).Error
}

// ClearSetupState removes the guild's setup progress, if any.
func (s *Storage) ClearSetupState(guildID string) error {
	return s.db.Where("guild_id = ?", guildID).Delete(&SetupState{}).Error
}

// PurgeExpiredSetupStates removes setup rows whose TTL has passed.
func (s *Storage) PurgeExpiredSetupStates(now time.Time) error {
	return s.db.Where("expires_at < ?", now).Delete(&SetupState{}).Error
}
