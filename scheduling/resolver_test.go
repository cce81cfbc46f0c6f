package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftlink/marketplace-api/models"
)

// Monday 2025-06-02 is the reference day for most tests; the injected
// clock sits on the Sunday before it so nothing is clamped away.
var (
	testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	monday  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.BuilderProfile{},
		&models.SessionType{},
		&models.AvailabilityRule{},
		&models.AvailabilityException{},
		&models.Booking{},
	))
	return db
}

func newTestResolver(db *gorm.DB) *Resolver {
	r := NewResolver(db)
	r.Now = func() time.Time { return testNow }
	return r
}

// seedBuilder creates a builder with a UTC profile and a 60-minute
// session type, returning both IDs.
func seedBuilder(t *testing.T, db *gorm.DB) (uint, uint) {
	t.Helper()
	builder := models.User{Name: "Mira", Email: "mira@example.com"}
	require.NoError(t, db.Create(&builder).Error)
	require.NoError(t, db.Create(&models.BuilderProfile{
		BuilderID: builder.ID,
		Timezone:  "UTC",
	}).Error)
	sessionType := models.SessionType{
		BuilderID:       builder.ID,
		Title:           "Kitchen consult",
		DurationMinutes: 60,
		PriceCents:      15000,
		Currency:        "usd",
		IsActive:        true,
	}
	require.NoError(t, db.Create(&sessionType).Error)
	return builder.ID, sessionType.ID
}

func mondayAt(hour, min int) time.Time {
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func TestFreeWindowsSubtractsExceptionsAndBookings(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: true,
	}).Error)
	require.NoError(t, db.Create(&models.AvailabilityException{
		BuilderID:     builderID,
		StartDateTime: mondayAt(12, 0),
		EndDateTime:   mondayAt(13, 0),
		IsAvailable:   false,
		Title:         "Lunch",
	}).Error)
	require.NoError(t, db.Create(&models.Booking{
		Reference: "bk_free_windows",
		BuilderID: builderID,
		ClientID:  99,
		StartTime: mondayAt(10, 0),
		EndTime:   mondayAt(11, 0),
		Status:    models.StatusConfirmed,
	}).Error)

	windows, err := resolver.FreeWindows(builderID, monday, tuesday)
	require.NoError(t, err)

	require.Len(t, windows, 3)
	assert.True(t, windows[0].Start.Equal(mondayAt(9, 0)))
	assert.True(t, windows[0].End.Equal(mondayAt(10, 0)))
	assert.True(t, windows[1].Start.Equal(mondayAt(11, 0)))
	assert.True(t, windows[1].End.Equal(mondayAt(12, 0)))
	assert.True(t, windows[2].Start.Equal(mondayAt(13, 0)))
	assert.True(t, windows[2].End.Equal(mondayAt(17, 0)))
}

func TestResolveSlicesWindowsBySessionDuration(t *testing.T) {
	db := setupTestDB(t)
	builderID, sessionTypeID := seedBuilder(t, db)
	resolver := newTestResolver(db)

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: true,
	}).Error)
	require.NoError(t, db.Create(&models.AvailabilityException{
		BuilderID:     builderID,
		StartDateTime: mondayAt(12, 0),
		EndDateTime:   mondayAt(13, 0),
		IsAvailable:   false,
	}).Error)
	booked := Interval{Start: mondayAt(10, 0), End: mondayAt(11, 0)}
	require.NoError(t, db.Create(&models.Booking{
		Reference: "bk_resolve_slices",
		BuilderID: builderID,
		ClientID:  99,
		StartTime: booked.Start,
		EndTime:   booked.End,
		Status:    models.StatusPending,
	}).Error)

	slots, err := resolver.Resolve(builderID, monday, tuesday, sessionTypeID)
	require.NoError(t, err)

	wantStarts := []time.Time{
		mondayAt(9, 0), mondayAt(11, 0), mondayAt(13, 0),
		mondayAt(14, 0), mondayAt(15, 0), mondayAt(16, 0),
	}
	require.Len(t, slots, len(wantStarts))
	for i, slot := range slots {
		assert.True(t, slot.StartTime.Equal(wantStarts[i]), "slot %d starts at %s", i, slot.StartTime)
		assert.True(t, slot.EndTime.Equal(wantStarts[i].Add(time.Hour)))
		assert.Equal(t, builderID, slot.BuilderID)
		assert.Equal(t, sessionTypeID, slot.SessionTypeID)
		slotIv := Interval{Start: slot.StartTime, End: slot.EndTime}
		assert.False(t, slotIv.Overlaps(booked), "slot %d overlaps the existing booking", i)
	}
}

func TestResolveWithoutSessionTypeReturnsWholeWindows(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "12:00",
		IsAvailable: true,
	}).Error)

	slots, err := resolver.Resolve(builderID, monday, tuesday, 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].StartTime.Equal(mondayAt(9, 0)))
	assert.True(t, slots[0].EndTime.Equal(mondayAt(12, 0)))
	assert.Zero(t, slots[0].SessionTypeID)
}

func TestFreeWindowsClampsPastToNow(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := NewResolver(db)
	resolver.Now = func() time.Time { return mondayAt(10, 30) }

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: true,
	}).Error)

	windows, err := resolver.FreeWindows(builderID, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Start.Equal(mondayAt(10, 30)))
	assert.True(t, windows[0].End.Equal(mondayAt(17, 0)))
}

func TestFreeWindowsEntirelyInPast(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := NewResolver(db)
	resolver.Now = func() time.Time { return tuesday.Add(24 * time.Hour) }

	windows, err := resolver.FreeWindows(builderID, monday, tuesday)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestFreeWindowsInvalidRange(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	_, err := resolver.FreeWindows(builderID, tuesday, monday)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFreeWindowsUnknownBuilder(t *testing.T) {
	db := setupTestDB(t)
	resolver := newTestResolver(db)

	_, err := resolver.FreeWindows(4242, monday, tuesday)
	assert.ErrorIs(t, err, ErrBuilderNotFound)
}

func TestResolveRejectsInactiveSessionType(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	inactive := models.SessionType{
		BuilderID:       builderID,
		Title:           "Retired offering",
		DurationMinutes: 30,
		IsActive:        false,
	}
	require.NoError(t, db.Create(&inactive).Error)

	_, err := resolver.Resolve(builderID, monday, tuesday, inactive.ID)
	assert.ErrorIs(t, err, ErrSessionTypeNotFound)
}

func TestResolveRejectsForeignSessionType(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	other := models.User{Name: "Sven", Email: "sven@example.com"}
	require.NoError(t, db.Create(&other).Error)
	foreign := models.SessionType{
		BuilderID:       other.ID,
		Title:           "Someone else's offering",
		DurationMinutes: 60,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&foreign).Error)

	_, err := resolver.Resolve(builderID, monday, tuesday, foreign.ID)
	assert.ErrorIs(t, err, ErrSessionTypeNotFound)
}

func TestAvailableExceptionAddsOpenTime(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	// No weekly rule at all; the one-off exception alone opens time.
	require.NoError(t, db.Create(&models.AvailabilityException{
		BuilderID:     builderID,
		StartDateTime: mondayAt(10, 0),
		EndDateTime:   mondayAt(12, 0),
		IsAvailable:   true,
		Title:         "Extra hours",
	}).Error)

	windows, err := resolver.FreeWindows(builderID, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Start.Equal(mondayAt(10, 0)))
	assert.True(t, windows[0].End.Equal(mondayAt(12, 0)))
}

func TestCancelledBookingsDoNotBlockSlots(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "12:00",
		IsAvailable: true,
	}).Error)
	require.NoError(t, db.Create(&models.Booking{
		Reference: "bk_cancelled",
		BuilderID: builderID,
		ClientID:  99,
		StartTime: mondayAt(10, 0),
		EndTime:   mondayAt(11, 0),
		Status:    models.StatusCancelled,
	}).Error)

	windows, err := resolver.FreeWindows(builderID, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Start.Equal(mondayAt(9, 0)))
	assert.True(t, windows[0].End.Equal(mondayAt(12, 0)))
}

func TestRulesExpandInBuilderTimezone(t *testing.T) {
	db := setupTestDB(t)
	builder := models.User{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, db.Create(&builder).Error)
	require.NoError(t, db.Create(&models.BuilderProfile{
		BuilderID: builder.ID,
		Timezone:  "America/New_York",
	}).Error)
	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builder.ID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: true,
	}).Error)
	resolver := newTestResolver(db)

	windows, err := resolver.FreeWindows(builder.ID, monday, tuesday)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	// June is EDT, UTC-4: 09:00 local is 13:00 UTC.
	assert.True(t, windows[0].Start.Equal(mondayAt(13, 0)))
	assert.True(t, windows[0].End.Equal(mondayAt(14, 0)))
}

func TestIsSlotFree(t *testing.T) {
	db := setupTestDB(t)
	builderID, _ := seedBuilder(t, db)
	resolver := newTestResolver(db)

	require.NoError(t, db.Create(&models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: true,
	}).Error)

	free, err := resolver.IsSlotFree(builderID, mondayAt(10, 0), mondayAt(11, 0))
	require.NoError(t, err)
	assert.True(t, free)

	require.NoError(t, db.Create(&models.Booking{
		Reference: "bk_slot_taken",
		BuilderID: builderID,
		ClientID:  99,
		StartTime: mondayAt(10, 0),
		EndTime:   mondayAt(11, 0),
		Status:    models.StatusPending,
	}).Error)

	free, err = resolver.IsSlotFree(builderID, mondayAt(10, 0), mondayAt(11, 0))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = resolver.IsSlotFree(builderID, mondayAt(10, 30), mondayAt(11, 30))
	require.NoError(t, err)
	assert.False(t, free, "partial overlap must not be bookable")

	free, err = resolver.IsSlotFree(builderID, mondayAt(11, 0), mondayAt(12, 0))
	require.NoError(t, err)
	assert.True(t, free, "adjacent slot stays free")
}
