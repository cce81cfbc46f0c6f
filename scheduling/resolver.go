package scheduling

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/craftlink/marketplace-api/models"
)

var (
	ErrBuilderNotFound     = errors.New("builder not found")
	ErrSessionTypeNotFound = errors.New("session type not found")
	ErrInvalidRange        = errors.New("invalid date range")
)

// Resolver computes open time slots for a builder from recurring weekly
// rules minus one-off exceptions minus already-booked intervals.
type Resolver struct {
	DB *gorm.DB

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// FreeWindows returns the builder's open intervals within [from, to),
// merged and sorted. The past portion of the window is clamped to now
// rather than rejected.
func (r *Resolver) FreeWindows(builderID uint, from, to time.Time) ([]Interval, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	var builder models.User
	if err := r.DB.First(&builder, builderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuilderNotFound
		}
		return nil, err
	}

	if now := r.now(); from.Before(now) {
		from = now
	}
	if !to.After(from) {
		return []Interval{}, nil
	}
	bounds := Interval{Start: from, End: to}

	// Missing profile falls back to UTC.
	var profile models.BuilderProfile
	r.DB.Where("builder_id = ?", builderID).First(&profile)
	loc := profile.Location()

	var rules []models.AvailabilityRule
	if err := r.DB.Where("builder_id = ? AND is_available = ?", builderID, true).
		Find(&rules).Error; err != nil {
		return nil, err
	}

	var exceptions []models.AvailabilityException
	if err := r.DB.Where("builder_id = ? AND end_date_time > ? AND start_date_time < ?", builderID, from, to).
		Find(&exceptions).Error; err != nil {
		return nil, err
	}

	var bookings []models.Booking
	if err := r.DB.Where("builder_id = ? AND status IN ? AND end_time > ? AND start_time < ?",
		builderID,
		[]models.BookingStatus{models.StatusPending, models.StatusConfirmed},
		from, to).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	// Expand each matching rule into a concrete window per calendar day,
	// in the builder's timezone.
	var open []Interval
	localFrom := from.In(loc)
	day := time.Date(localFrom.Year(), localFrom.Month(), localFrom.Day(), 0, 0, 0, 0, loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, rule := range rules {
			if int(rule.DayOfWeek) != int(day.Weekday()) {
				continue
			}
			window, err := ruleWindow(rule, day, loc)
			if err != nil {
				return nil, err
			}
			window = window.Clip(bounds)
			if !window.IsEmpty() {
				open = append(open, window)
			}
		}
	}

	// Exceptions override the weekly rules for their interval: available
	// ones add extra open time, unavailable ones become busy time.
	var busy []Interval
	for _, ex := range exceptions {
		iv := Interval{Start: ex.StartDateTime, End: ex.EndDateTime}.Clip(bounds)
		if iv.IsEmpty() {
			continue
		}
		if ex.IsAvailable {
			open = append(open, iv)
		} else {
			busy = append(busy, iv)
		}
	}

	for _, b := range bookings {
		iv := Interval{Start: b.StartTime, End: b.EndTime}.Clip(bounds)
		if !iv.IsEmpty() {
			busy = append(busy, iv)
		}
	}

	return subtractIntervals(open, busy), nil
}

// Resolve slices the builder's free windows into slots. With a session
// type, each window yields consecutive slots of the session's duration;
// windows shorter than the duration are dropped. Without one, each free
// window is returned as a single slot.
func (r *Resolver) Resolve(builderID uint, from, to time.Time, sessionTypeID uint) ([]TimeSlot, error) {
	free, err := r.FreeWindows(builderID, from, to)
	if err != nil {
		return nil, err
	}

	slots := []TimeSlot{}
	if sessionTypeID == 0 {
		for _, w := range free {
			slots = append(slots, TimeSlot{
				StartTime: w.Start,
				EndTime:   w.End,
				BuilderID: builderID,
			})
		}
		return slots, nil
	}

	var sessionType models.SessionType
	if err := r.DB.First(&sessionType, sessionTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	if sessionType.BuilderID != builderID || !sessionType.IsActive {
		return nil, ErrSessionTypeNotFound
	}

	duration := sessionType.Duration()
	for _, w := range free {
		for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(duration) {
			slots = append(slots, TimeSlot{
				StartTime:     start,
				EndTime:       start.Add(duration),
				BuilderID:     builderID,
				SessionTypeID: sessionTypeID,
			})
		}
	}
	return slots, nil
}

// IsSlotFree re-checks a single interval against the resolver. Used at
// booking-creation time to close the read-then-book gap.
func (r *Resolver) IsSlotFree(builderID uint, start, end time.Time) (bool, error) {
	free, err := r.FreeWindows(builderID, start, end)
	if err != nil {
		return false, err
	}
	want := Interval{Start: start, End: end}
	for _, w := range free {
		if !w.Start.After(want.Start) && !w.End.Before(want.End) {
			return true, nil
		}
	}
	return false, nil
}

func ruleWindow(rule models.AvailabilityRule, day time.Time, loc *time.Location) (Interval, error) {
	start, err := atClock(day, rule.StartTime, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("rule %d: invalid start time: %w", rule.ID, err)
	}
	end, err := atClock(day, rule.EndTime, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("rule %d: invalid end time: %w", rule.ID, err)
	}
	return Interval{Start: start, End: end}, nil
}

func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
