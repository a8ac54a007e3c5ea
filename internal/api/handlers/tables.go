package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
	"github.com/playmatatu/snooker/internal/snooker"
	"github.com/playmatatu/snooker/internal/store"
)

// FrameHistory reads recorded frames.
type FrameHistory interface {
	RecentFrames(ctx context.Context, tableToken string, limit int) ([]store.FrameRecord, error)
	TableSummary(ctx context.Context, tableToken string) (store.Summary, error)
}

// CreateTable opens a table and returns the creator's seat token.
func CreateTable(manager *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		_, grant, err := manager.CreateTable(game.CreateTableOptions{
			Player1:   req.Player1,
			Player2:   req.Player2,
			HotSeat:   req.HotSeat,
			Passcode:  req.Passcode,
			RulesMode: snooker.RulesMode(req.RulesMode),
			Layout:    snooker.LayoutMode(req.Layout),
			Seed:      req.Seed,
		})
		if errors.Is(err, game.ErrTooManyTables) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No tables available, try again later"})
			return
		}
		if err != nil {
			log.Printf("[ERROR] CreateTable failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
			return
		}

		c.JSON(http.StatusCreated, seatResponse(grant))
	}
}

// JoinTable claims the second seat.
func JoinTable(manager *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.JoinTableRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		grant, err := manager.JoinTable(c.Param("token"), req.Name, req.Passcode)
		switch {
		case errors.Is(err, game.ErrTableNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		case errors.Is(err, game.ErrTableFull):
			c.JSON(http.StatusConflict, gin.H{"error": "Table is full"})
		case errors.Is(err, game.ErrBadPasscode):
			c.JSON(http.StatusForbidden, gin.H{"error": "Wrong passcode"})
		case err != nil:
			log.Printf("[ERROR] JoinTable %s failed: %v", c.Param("token"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join table"})
		default:
			c.JSON(http.StatusOK, seatResponse(grant))
		}
	}
}

// GetTable returns a table's seats and current state. A closed table is
// served from its last saved state when one is still kept.
func GetTable(manager *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		table, err := manager.GetTable(token)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"table": table.Info(),
				"state": table.Snapshot(),
				"open":  true,
			})
			return
		}

		saved, err := manager.SavedState(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"table": gin.H{"token": token},
			"state": json.RawMessage(saved),
			"open":  false,
		})
	}
}

// GetTableFrames lists the frames recorded for a table.
func GetTableFrames(hist FrameHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		frames, err := hist.RecentFrames(c.Request.Context(), token, limit)
		if err != nil {
			log.Printf("[ERROR] RecentFrames for %s failed: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load frames"})
			return
		}
		summary, err := hist.TableSummary(c.Request.Context(), token)
		if err != nil {
			log.Printf("[ERROR] TableSummary for %s failed: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load frames"})
			return
		}

		c.JSON(http.StatusOK, models.FramesResponse{Table: token, Frames: frames, Summary: summary})
	}
}
