package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
)

// setupRulesApp wires the availability handlers behind a stub auth layer
// acting as the given builder.
func setupRulesApp(t *testing.T, userID uint) *fiber.App {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.AvailabilityRule{}, &models.AvailabilityException{}))
	db.DB = gdb

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("role", models.RoleBuilder)
		return c.Next()
	})
	app.Post("/rules", CreateRule)
	app.Patch("/rules/:id", UpdateRule)
	app.Post("/exceptions", CreateException)
	return app
}

func jsonRequest(t *testing.T, app *fiber.App, method, path string, body map[string]interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func seedRule(t *testing.T, builderID uint, start, end string) models.AvailabilityRule {
	t.Helper()
	rule := models.AvailabilityRule{
		BuilderID:   builderID,
		DayOfWeek:   models.Monday,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}
	require.NoError(t, db.DB.Create(&rule).Error)
	return rule
}

func TestUpdateRuleIgnoresBodyID(t *testing.T) {
	app := setupRulesApp(t, 1)
	own := seedRule(t, 1, "09:00", "17:00")
	victim := seedRule(t, 2, "10:00", "16:00")

	resp := jsonRequest(t, app, "PATCH", "/rules/1", map[string]interface{}{
		"id":         victim.ID,
		"start_time": "01:00",
		"end_time":   "02:00",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var untouched models.AvailabilityRule
	require.NoError(t, db.DB.First(&untouched, victim.ID).Error)
	assert.Equal(t, uint(2), untouched.BuilderID)
	assert.Equal(t, "10:00", untouched.StartTime)
	assert.Equal(t, "16:00", untouched.EndTime)

	var updated models.AvailabilityRule
	require.NoError(t, db.DB.First(&updated, own.ID).Error)
	assert.Equal(t, uint(1), updated.BuilderID)
	assert.Equal(t, "01:00", updated.StartTime)
	assert.Equal(t, "02:00", updated.EndTime)
}

func TestUpdateRuleRejectsForeignRule(t *testing.T) {
	app := setupRulesApp(t, 1)
	victim := seedRule(t, 2, "10:00", "16:00")

	resp := jsonRequest(t, app, "PATCH", "/rules/1", map[string]interface{}{
		"start_time": "01:00",
		"end_time":   "02:00",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var untouched models.AvailabilityRule
	require.NoError(t, db.DB.First(&untouched, victim.ID).Error)
	assert.Equal(t, "10:00", untouched.StartTime)
}

func TestUpdateRulePartialBodyKeepsOtherFields(t *testing.T) {
	app := setupRulesApp(t, 1)
	seedRule(t, 1, "09:00", "17:00")

	resp := jsonRequest(t, app, "PATCH", "/rules/1", map[string]interface{}{
		"end_time": "12:00",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.AvailabilityRule
	require.NoError(t, db.DB.First(&updated, 1).Error)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, "12:00", updated.EndTime)
	assert.Equal(t, models.Monday, updated.DayOfWeek)
	assert.True(t, updated.IsAvailable)
}

func TestCreateRuleIgnoresBodyIDAndOwner(t *testing.T) {
	app := setupRulesApp(t, 1)

	resp := jsonRequest(t, app, "POST", "/rules", map[string]interface{}{
		"id":          999,
		"builder_id":  42,
		"day_of_week": int(models.Tuesday),
		"start_time":  "09:00",
		"end_time":    "12:00",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var rules []models.AvailabilityRule
	require.NoError(t, db.DB.Find(&rules).Error)
	require.Len(t, rules, 1)
	assert.NotEqual(t, uint(999), rules[0].ID)
	assert.Equal(t, uint(1), rules[0].BuilderID)
	assert.Equal(t, models.Tuesday, rules[0].DayOfWeek)
}

func TestCreateExceptionIgnoresBodyOwner(t *testing.T) {
	app := setupRulesApp(t, 1)

	resp := jsonRequest(t, app, "POST", "/exceptions", map[string]interface{}{
		"id":              999,
		"builder_id":      42,
		"start_date_time": "2025-06-02T10:00:00Z",
		"end_date_time":   "2025-06-02T12:00:00Z",
		"is_available":    false,
		"title":           "Block",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var exceptions []models.AvailabilityException
	require.NoError(t, db.DB.Find(&exceptions).Error)
	require.Len(t, exceptions, 1)
	assert.NotEqual(t, uint(999), exceptions[0].ID)
	assert.Equal(t, uint(1), exceptions[0].BuilderID)
}
