package handler

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/report"
	"gorm.io/gorm"
)

// ReportHandler serves rendered attendance report images.
type ReportHandler struct {
	db        *gorm.DB
	stats     *StatsHandler
	generator *report.Generator
}

func NewReportHandler(db *gorm.DB, stats *StatsHandler, generator *report.Generator) *ReportHandler {
	return &ReportHandler{db: db, stats: stats, generator: generator}
}

// TeamImage renders one team's attendance matrix as a PNG attachment.
func (h *ReportHandler) TeamImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	raidCount, _ := strconv.Atoi(c.DefaultQuery("raids", strconv.Itoa(defaultViewRaids)))
	if raidCount < 1 || raidCount > maxViewRaids {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raids must be between 1 and 50"})
		return
	}

	view, ok := h.stats.teamViewData(c, id, raidCount)
	if !ok {
		return
	}

	png, err := h.generator.RenderTeam(view)
	if err != nil {
		log.Printf("attendance report render failed for team %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	middleware.RecordReportRendered("png")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-team-%d.png", id))
	c.Data(http.StatusOK, "image/png", png)
}

// AllTeamsArchive renders one PNG per active team and packages them in a
// ZIP archive.
func (h *ReportHandler) AllTeamsArchive(c *gin.Context) {
	raidCount, _ := strconv.Atoi(c.DefaultQuery("raids", strconv.Itoa(defaultViewRaids)))
	if raidCount < 1 || raidCount > maxViewRaids {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raids must be between 1 and 50"})
		return
	}

	var teams []model.Team
	if err := h.db.Where("is_active = ?", true).Order("id").Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	for _, team := range teams {
		view, ok := h.stats.teamViewData(c, team.ID, raidCount)
		if !ok {
			// teamViewData already wrote a response; should not happen for a
			// team we just listed.
			return
		}

		png, err := h.generator.RenderTeam(view)
		if err != nil {
			log.Printf("attendance report render failed for team %d: %v", team.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
			return
		}

		entry, err := archive.Create(fmt.Sprintf("attendance-team-%d.png", team.ID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build archive"})
			return
		}
		if _, err := entry.Write(png); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build archive"})
			return
		}
	}

	if err := archive.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build archive"})
		return
	}

	middleware.RecordReportRendered("zip")
	c.Header("Content-Disposition", "attachment; filename=attendance-reports.zip")
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
