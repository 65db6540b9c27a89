package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

// SaveScheduleDay inserts or overwrites one weekday's event for a guild.
func (s *Storage) SaveScheduleDay(guildID, weekday, eventName, outfit, vehicle string) error {
	if !ValidWeekday(weekday) {
		return fmt.Errorf("invalid weekday %q", weekday)
	}
	entry := ScheduleEntry{
		GuildID:   guildID,
		Weekday:   weekday,
		EventName: eventName,
		Outfit:    outfit,
		Vehicle:   vehicle,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "weekday"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_name", "outfit", "vehicle", "updated_at"}),
	}).Create(&entry).Error
}

// ScheduleDay returns the guild's entry for one weekday, or ErrNotFound.
func (s *Storage) ScheduleDay(guildID, weekday string) (*ScheduleEntry, error) {
	var entry ScheduleEntry
	err := s.db.Where("guild_id = ? AND weekday = ?", guildID, weekday).Take(&entry).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

// GuildSchedule returns all configured entries for a guild in Monday-first order.
func (s *Storage) GuildSchedule(guildID string) ([]ScheduleEntry, error) {
	var entries []ScheduleEntry
	if err := s.db.Where("guild_id = ?", guildID).Find(&entries).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]ScheduleEntry, len(entries))
	for _, e := range entries {
		byDay[e.Weekday] = e
	}
	ordered := make([]ScheduleEntry, 0, len(entries))
	for _, day := range Weekdays {
		if e, ok := byDay[day]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// ScheduleLastUpdated returns the most recent updated_at across the guild's
// schedule entries, or the zero time when no schedule exists.
func (s *Storage) ScheduleLastUpdated(guildID string) (time.Time, error) {
	var entries []ScheduleEntry
	if err := s.db.Where("guild_id = ?", guildID).Find(&entries).Error; err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, e := range entries {
		if e.UpdatedAt.After(latest) {
			latest = e.UpdatedAt
		}
	}
	return latest, nil
}
