// Package report aggregates RSVP responses into attendance summaries over a
// day or a range of days.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/musterbot/muster/internal/storage"
	"github.com/musterbot/muster/pkg/util"
)

// Period selects the date range of a report.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodMidweek   Period = "midweek" // Monday through Wednesday
	PeriodWeekly    Period = "weekly"  // Monday through Sunday
)

// DisplayLimit is the most names a rendered list shows; counts always cover
// the full set.
const DisplayLimit = 10

// MemberCounter resolves a guild's member count, when the gateway cache has
// one. Reports work without it, they just omit the participation rate.
type MemberCounter func(guildID string) (int, error)

// Day is the per-date breakdown inside a summary. The response slices hold
// user IDs, sorted for stable rendering.
type Day struct {
	Date      string
	Weekday   string
	EventName string
	Posted    bool
	Yes       []string
	No        []string
	Maybe     []string
	Mobile    []string
}

// Attending is everyone counted toward attendance: yes plus mobile.
func (d Day) Attending() int { return len(d.Yes) + len(d.Mobile) }

// Responses is the total number of responders for the day.
func (d Day) Responses() int {
	return len(d.Yes) + len(d.No) + len(d.Maybe) + len(d.Mobile)
}

// Summary is an aggregated report over one or more days. The top-level bucket
// counts are distinct users per bucket across the whole range.
type Summary struct {
	Period Period
	From   string
	To     string
	Days   []Day

	Yes    int
	No     int
	Maybe  int
	Mobile int

	// ConsistentAttendees answered yes (or mobile) on every day that had a
	// posted card. Only populated for multi-day periods.
	ConsistentAttendees []string

	DistinctResponders int
	MemberCount        int // 0 when unknown
}

// PostedDays counts days in the range that actually had an event card.
func (s *Summary) PostedDays() int {
	n := 0
	for _, d := range s.Days {
		if d.Posted {
			n++
		}
	}
	return n
}

// ParticipationRate is distinct responders over member count, or 0 when the
// member count is unknown.
func (s *Summary) ParticipationRate() float64 {
	if s.MemberCount <= 0 {
		return 0
	}
	return float64(s.DistinctResponders) / float64(s.MemberCount)
}

// Reporter builds summaries from the RSVP ledger.
type Reporter struct {
	store   *storage.Storage
	members MemberCounter
	now     func() time.Time
}

func New(store *storage.Storage, members MemberCounter) *Reporter {
	return &Reporter{store: store, members: members, now: time.Now}
}

// Build aggregates the guild's RSVPs for the period, evaluated against the
// guild's local calendar.
func (r *Reporter) Build(guildID string, period Period) (*Summary, error) {
	gs, err := r.store.Settings(guildID)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if l, lerr := time.LoadLocation(gs.Timezone); lerr == nil {
		loc = l
	}
	local := r.now().In(loc)

	from, to, err := rangeFor(period, local)
	if err != nil {
		return nil, err
	}

	posts, err := r.store.PostsInRange(guildID, util.DateString(from), util.DateString(to))
	if err != nil {
		return nil, err
	}

	postIDs := make([]string, 0, len(posts))
	byDate := make(map[string]storage.DailyPost, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		byDate[p.EventDate] = p
	}

	rsvps, err := r.store.RsvpsForPosts(postIDs)
	if err != nil {
		return nil, err
	}
	byPost := make(map[string][]storage.RsvpResponse)
	for _, rs := range rsvps {
		byPost[rs.PostID] = append(byPost[rs.PostID], rs)
	}

	sum := &Summary{
		Period: period,
		From:   util.DateString(from),
		To:     util.DateString(to),
	}

	buckets := map[string]map[string]bool{
		storage.ResponseYes:    {},
		storage.ResponseNo:     {},
		storage.ResponseMaybe:  {},
		storage.ResponseMobile: {},
	}
	responders := map[string]bool{}
	attendedDays := map[string]int{}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := util.DateString(d)
		day := Day{Date: date, Weekday: util.WeekdayName(d)}

		post, ok := byDate[date]
		if !ok {
			sum.Days = append(sum.Days, day)
			continue
		}
		day.Posted = true
		day.EventName = post.EventName

		for _, rs := range byPost[post.ID] {
			switch rs.ResponseType {
			case storage.ResponseYes:
				day.Yes = append(day.Yes, rs.UserID)
			case storage.ResponseNo:
				day.No = append(day.No, rs.UserID)
			case storage.ResponseMaybe:
				day.Maybe = append(day.Maybe, rs.UserID)
			case storage.ResponseMobile:
				day.Mobile = append(day.Mobile, rs.UserID)
			default:
				continue
			}
			buckets[rs.ResponseType][rs.UserID] = true
			responders[rs.UserID] = true
			if rs.ResponseType == storage.ResponseYes || rs.ResponseType == storage.ResponseMobile {
				attendedDays[rs.UserID]++
			}
		}
		sortDay(&day)
		sum.Days = append(sum.Days, day)
	}

	sum.Yes = len(buckets[storage.ResponseYes])
	sum.No = len(buckets[storage.ResponseNo])
	sum.Maybe = len(buckets[storage.ResponseMaybe])
	sum.Mobile = len(buckets[storage.ResponseMobile])
	sum.DistinctResponders = len(responders)

	if period == PeriodMidweek || period == PeriodWeekly {
		posted := sum.PostedDays()
		if posted > 0 {
			for user, n := range attendedDays {
				if n == posted {
					sum.ConsistentAttendees = append(sum.ConsistentAttendees, user)
				}
			}
			sort.Strings(sum.ConsistentAttendees)
		}
	}

	if r.members != nil {
		if n, merr := r.members(guildID); merr == nil {
			sum.MemberCount = n
		}
	}
	return sum, nil
}

func rangeFor(period Period, local time.Time) (from, to time.Time, err error) {
	switch period {
	case PeriodToday:
		return local, local, nil
	case PeriodYesterday:
		y := local.AddDate(0, 0, -1)
		return y, y, nil
	case PeriodMidweek:
		start := util.WeekStart(local)
		return start, start.AddDate(0, 0, 2), nil
	case PeriodWeekly:
		start := util.WeekStart(local)
		return start, start.AddDate(0, 0, 6), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown report period %q", period)
	}
}

func sortDay(d *Day) {
	sort.Strings(d.Yes)
	sort.Strings(d.No)
	sort.Strings(d.Maybe)
	sort.Strings(d.Mobile)
}

// TruncateNames caps a name list for display at DisplayLimit, appending an
// "and N more" marker. The input is never modified.
func TruncateNames(names []string) []string {
	if len(names) <= DisplayLimit {
		return names
	}
	out := make([]string, DisplayLimit, DisplayLimit+1)
	copy(out, names[:DisplayLimit])
	return append(out, fmt.Sprintf("and %d more", len(names)-DisplayLimit))
}
