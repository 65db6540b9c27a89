package storage

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommandHashes returns the guild's cached command definition hashes.
func (s *Storage) CommandHashes(guildID string) (map[string]string, error) {
	var rows []CommandHash
	if err := s.db.Where("guild_id = ?", guildID).Find(&rows).Error; err != nil {
		return nil, err
	}
	hashes := make(map[string]string, len(rows))
	for _, r := range rows {
		hashes[r.Command] = r.Hash
	}
	return hashes, nil
}

// SaveCommandHashes replaces the guild's cached hashes with the given set.
// Runs in one transaction so a mid-write failure keeps the old cache intact.
func (s *Storage) SaveCommandHashes(guildID string, hashes map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("guild_id = ?", guildID).Delete(&CommandHash{}).Error; err != nil {
			return err
		}
		for name, h := range hashes {
			row := CommandHash{GuildID: guildID, Command: name, Hash: h}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "guild_id"}, {Name: "command"}},
				DoUpdates: clause.AssignmentColumns([]string{"hash"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
