package storage

import "time"

// Response types a member can pick on an event card. "mobile" is a distinct
// bucket but counts toward attending totals in reports.
const (
	ResponseYes    = "yes"
	ResponseNo     = "no"
	ResponseMaybe  = "maybe"
	ResponseMobile = "mobile"
)

// ValidResponse reports whether t is one of the four response types.
func ValidResponse(t string) bool {
	switch t {
	case ResponseYes, ResponseNo, ResponseMaybe, ResponseMobile:
		return true
	}
	return false
}

// Reminder types. "4pm" fires at a fixed local wall-clock time; the rest are
// offsets before the guild's event time.
const (
	Reminder4PM   = "4pm"
	Reminder1Hour = "1_hour"
	Reminder15Min = "15_minutes"
	Reminder5Min  = "5_minutes"
)

// Admin notification types, capped at one per guild per day each.
const (
	NoticeScheduleMissing = "schedule_missing"
	NoticeScheduleStale   = "schedule_stale"
	NoticePermission      = "permission_denied"
)

// Weekdays in schedule order.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// ValidWeekday reports whether day is a lowercase English weekday name.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleEntry is one weekday's event for a guild. Absent weekday means no
// event that day. Overwritten wholesale by each setup run.
type ScheduleEntry struct {
	ID        uint   `gorm:"primaryKey"`
	GuildID   string `gorm:"not null;uniqueIndex:ux_schedule_guild_day,priority:1"`
	Weekday   string `gorm:"not null;uniqueIndex:ux_schedule_guild_day,priority:2"`
	EventName string `gorm:"not null"`
	Outfit    string
	Vehicle   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ScheduleEntry) TableName() string { return "weekly_schedules" }

// GuildSettings is the per-guild configuration row, created lazily on the
// first configuration command.
type GuildSettings struct {
	ID             uint   `gorm:"primaryKey"`
	GuildID        string `gorm:"not null;uniqueIndex"`
	EventChannelID string
	AdminChannelID string
	EventTime      string `gorm:"not null"` // local "HH:MM"
	PostingTime    string `gorm:"not null"` // local "HH:MM"
	Timezone       string `gorm:"not null"` // IANA name

	AutoDailyPosts  bool
	ReminderEnabled bool
	Reminder4PM     bool
	Reminder1H      bool
	Reminder15M     bool
	Reminder5M      bool

	// Touched on any interaction; drives guild retention cleanup.
	LastSeenAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GuildSettings) TableName() string { return "guild_settings" }

// DailyPost is the ledger row for one posted event card. The unique index on
// (guild_id, event_date) is the at-most-once contract for daily posting; a
// duplicate-key insert means another tick already posted.
type DailyPost struct {
	ID        string `gorm:"primaryKey"` // uuid
	GuildID   string `gorm:"not null;uniqueIndex:ux_post_guild_date,priority:1"`
	EventDate string `gorm:"not null;uniqueIndex:ux_post_guild_date,priority:2"` // "2006-01-02"
	ChannelID string `gorm:"not null"`
	MessageID string // cleared when the Discord message is cleaned up
	Weekday   string `gorm:"not null"`

	// Snapshot of the schedule entry at post time.
	EventName string `gorm:"not null"`
	Outfit    string
	Vehicle   string

	CreatedAt time.Time
}

func (DailyPost) TableName() string { return "daily_posts" }

// RsvpResponse holds the latest response per (post, user). A new click
// overwrites the old row; no history is kept.
type RsvpResponse struct {
	ID           uint   `gorm:"primaryKey"`
	PostID       string `gorm:"not null;uniqueIndex:ux_rsvp_post_user,priority:1"`
	UserID       string `gorm:"not null;uniqueIndex:ux_rsvp_post_user,priority:2"`
	GuildID      string `gorm:"not null;index"`
	ResponseType string `gorm:"not null"`
	RespondedAt  time.Time
}

func (RsvpResponse) TableName() string { return "rsvp_responses" }

// ReminderSend marks one reminder type as dispatched for a post. The unique
// index on (post_id, reminder_type) is the exactly-once contract; rows are
// never updated.
type ReminderSend struct {
	ID           uint   `gorm:"primaryKey"`
	PostID       string `gorm:"not null;uniqueIndex:ux_reminder_post_type,priority:1"`
	ReminderType string `gorm:"not null;uniqueIndex:ux_reminder_post_type,priority:2"`
	GuildID      string `gorm:"not null;index"`
	EventDate    string `gorm:"not null"`
	SentAt       time.Time
}

func (ReminderSend) TableName() string { return "reminder_sends" }

// AdminNotification caps admin alerts at one per (guild, date, type).
type AdminNotification struct {
	ID               uint   `gorm:"primaryKey"`
	GuildID          string `gorm:"not null;uniqueIndex:ux_notice_guild_date_type,priority:1"`
	NotificationDate string `gorm:"not null;uniqueIndex:ux_notice_guild_date_type,priority:2"`
	NotificationType string `gorm:"not null;uniqueIndex:ux_notice_guild_date_type,priority:3"`
	SentAt           time.Time
}

func (AdminNotification) TableName() string { return "admin_notifications" }

// SetupState tracks an in-progress stepwise schedule setup so it survives
// restarts. Expired rows are purged by the cleanup loop.
type SetupState struct {
	ID        uint   `gorm:"primaryKey"`
	GuildID   string `gorm:"not null;uniqueIndex"`
	DayIndex  int    `gorm:"not null"`
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (SetupState) TableName() string { return "setup_states" }

// CommandHash caches the definition hash of a registered slash command per
// guild, so re-registration only touches changed commands.
type CommandHash struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"not null;uniqueIndex:ux_cmdhash_guild_cmd,priority:1"`
	Command string `gorm:"not null;uniqueIndex:ux_cmdhash_guild_cmd,priority:2"`
	Hash    string `gorm:"not null"`
}

func (CommandHash) TableName() string { return "command_hashes" }
