package handler

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

// TransferHandler implements bulk JSON/ZIP export and import. Exports carry
// natural keys (names) instead of row ids so a dump can be replayed into a
// different database.
type TransferHandler struct {
	db *gorm.DB
}

func NewTransferHandler(db *gorm.DB) *TransferHandler {
	return &TransferHandler{db: db}
}

type exportEnvelope struct {
	ID         string      `json:"id"`
	ExportedAt time.Time   `json:"exported_at"`
	Data       interface{} `json:"data"`
}

func envelope(data interface{}) exportEnvelope {
	return exportEnvelope{ID: uuid.NewString(), ExportedAt: time.Now().UTC(), Data: data}
}

type guildExport struct {
	Name string `json:"name"`
}

type teamExport struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Guild       string `json:"guild"`
	IsActive    bool   `json:"isActive"`
}

type scenarioExport struct {
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	Mop      bool   `json:"mop"`
}

type teamRef struct {
	Name  string `json:"name"`
	Guild string `json:"guild"`
}

type toonExport struct {
	Username string    `json:"username"`
	IsMain   bool      `json:"isMain"`
	Class    string    `json:"class"`
	Role     string    `json:"role"`
	Teams    []teamRef `json:"teams,omitempty"`
}

type raidExport struct {
	ScheduledAt     time.Time `json:"scheduledAt"`
	Scenario        string    `json:"scenario"`
	Team            teamRef   `json:"team"`
	WarcraftlogsURL string    `json:"warcraftlogsUrl,omitempty"`
}

type attendanceExport struct {
	Team        teamRef   `json:"team"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Toon        string    `json:"toon"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes,omitempty"`
	BenchedNote *string   `json:"benchedNote,omitempty"`
}

// Export serializes every resource to a single JSON document keyed by
// resource type.
func (h *TransferHandler) Export(c *gin.Context) {
	dump, err := h.buildExport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=raidledger-export.json")
	c.JSON(http.StatusOK, dump)
}

func (h *TransferHandler) buildExport() (map[string]exportEnvelope, error) {
	var guilds []model.Guild
	if err := h.db.Order("id").Find(&guilds).Error; err != nil {
		return nil, err
	}
	guildNames := make(map[int64]string, len(guilds))
	guildRecords := make([]guildExport, 0, len(guilds))
	for _, g := range guilds {
		guildNames[g.ID] = g.Name
		guildRecords = append(guildRecords, guildExport{Name: g.Name})
	}

	var teams []model.Team
	if err := h.db.Order("id").Find(&teams).Error; err != nil {
		return nil, err
	}
	teamRefs := make(map[int64]teamRef, len(teams))
	teamRecords := make([]teamExport, 0, len(teams))
	for _, t := range teams {
		ref := teamRef{Name: t.Name, Guild: guildNames[t.GuildID]}
		teamRefs[t.ID] = ref
		teamRecords = append(teamRecords, teamExport{
			Name:        t.Name,
			Description: t.Description,
			Guild:       ref.Guild,
			IsActive:    t.IsActive,
		})
	}

	var scenarios []model.Scenario
	if err := h.db.Order("id").Find(&scenarios).Error; err != nil {
		return nil, err
	}
	scenarioNames := make(map[int64]string, len(scenarios))
	scenarioRecords := make([]scenarioExport, 0, len(scenarios))
	for _, s := range scenarios {
		scenarioNames[s.ID] = s.Name
		scenarioRecords = append(scenarioRecords, scenarioExport{Name: s.Name, IsActive: s.IsActive, Mop: s.Mop})
	}

	var toons []model.Toon
	if err := h.db.Order("id").Find(&toons).Error; err != nil {
		return nil, err
	}
	var links []model.ToonTeam
	if err := h.db.Find(&links).Error; err != nil {
		return nil, err
	}
	linksByToon := make(map[int64][]teamRef)
	for _, link := range links {
		if ref, ok := teamRefs[link.TeamID]; ok {
			linksByToon[link.ToonID] = append(linksByToon[link.ToonID], ref)
		}
	}
	toonNames := make(map[int64]string, len(toons))
	toonRecords := make([]toonExport, 0, len(toons))
	for _, t := range toons {
		toonNames[t.ID] = t.Username
		toonRecords = append(toonRecords, toonExport{
			Username: t.Username,
			IsMain:   t.IsMain,
			Class:    t.Class,
			Role:     t.Role,
			Teams:    linksByToon[t.ID],
		})
	}

	var raids []model.Raid
	if err := h.db.Order("id").Find(&raids).Error; err != nil {
		return nil, err
	}
	raidKeys := make(map[int64]raidExport, len(raids))
	raidRecords := make([]raidExport, 0, len(raids))
	for _, r := range raids {
		record := raidExport{
			ScheduledAt:     r.ScheduledAt,
			Scenario:        scenarioNames[r.ScenarioID],
			Team:            teamRefs[r.TeamID],
			WarcraftlogsURL: r.WarcraftlogsURL,
		}
		raidKeys[r.ID] = record
		raidRecords = append(raidRecords, record)
	}

	var records []model.Attendance
	if err := h.db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	attendanceRecords := make([]attendanceExport, 0, len(records))
	for _, a := range records {
		raid, ok := raidKeys[a.RaidID]
		if !ok {
			continue
		}
		attendanceRecords = append(attendanceRecords, attendanceExport{
			Team:        raid.Team,
			ScheduledAt: raid.ScheduledAt,
			Toon:        toonNames[a.ToonID],
			Status:      a.Status,
			Notes:       a.Notes,
			BenchedNote: a.BenchedNote,
		})
	}

	return map[string]exportEnvelope{
		"guilds":     envelope(guildRecords),
		"teams":      envelope(teamRecords),
		"scenarios":  envelope(scenarioRecords),
		"toons":      envelope(toonRecords),
		"raids":      envelope(raidRecords),
		"attendance": envelope(attendanceRecords),
	}, nil
}

// ImportSummary reports how the batch went. Per-record failures land in
// Errors; they do not abort the remaining records.
type ImportSummary struct {
	Imported map[string]int `json:"imported"`
	Errors   []string       `json:"errors"`
}

func (s *ImportSummary) recordError(resource string, err error) {
	s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", resource, err))
}

// Import ingests a .json document (single envelope, multi-resource map, or
// raw arrays) or a .zip of per-resource .json files. Resources are applied
// in dependency order so later phases can resolve names created earlier.
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	var resources map[string]json.RawMessage
	switch {
	case strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".zip"):
		resources, err = resourcesFromZip(raw)
	case strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".json"):
		resources, err = resourcesFromJSON(raw)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type; use .json or .zip"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("malformed import file: %v", err)})
		return
	}

	user := middleware.CurrentUser(c)
	summary := ImportSummary{Imported: map[string]int{}}

	// Dependency order: guilds before teams, scenarios/toons before raids,
	// raids before attendance.
	h.importGuilds(resources["guilds"], user, &summary)
	h.importTeams(resources["teams"], user, &summary)
	h.importScenarios(resources["scenarios"], &summary)
	h.importToons(resources["toons"], &summary)
	h.importRaids(resources["raids"], &summary)
	h.importAttendance(resources["attendance"], &summary)

	c.JSON(http.StatusOK, summary)
}

var importResourceNames = []string{"guilds", "teams", "scenarios", "toons", "raids", "attendance"}

func hasImportResource(document map[string]json.RawMessage) bool {
	for _, name := range importResourceNames {
		if _, ok := document[name]; ok {
			return true
		}
	}
	return false
}

// resourcesFromJSON accepts the three accepted .json shapes and flattens
// them into raw record arrays keyed by resource type.
func resourcesFromJSON(raw []byte) (map[string]json.RawMessage, error) {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, err
	}

	// A single envelope {id, data} has no resource keys of its own; its data
	// must be a map keyed by resource type, not a bare record array.
	if inner, ok := document["data"]; ok && !hasImportResource(document) {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err != nil || !hasImportResource(nested) {
			return nil, errors.New("envelope data must be keyed by resource type")
		}
		document = nested
	}

	if !hasImportResource(document) {
		return nil, errors.New("no recognized resource keys")
	}

	resources := make(map[string]json.RawMessage, len(document))
	for key, value := range document {
		resources[key] = unwrapEnvelope(value)
	}
	return resources, nil
}

// unwrapEnvelope strips an {id, exported_at, data} wrapper; raw arrays pass
// through untouched.
func unwrapEnvelope(raw json.RawMessage) json.RawMessage {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Data != nil {
		return wrapper.Data
	}
	return raw
}

func resourcesFromZip(raw []byte) (map[string]json.RawMessage, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	resources := make(map[string]json.RawMessage)
	for _, entry := range reader.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".json") {
			continue
		}
		f, err := entry.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		key := strings.TrimSuffix(strings.ToLower(entry.Name), ".json")
		resources[key] = unwrapEnvelope(content)
	}
	return resources, nil
}

func decodeRecords[T any](raw json.RawMessage, resource string, summary *ImportSummary) []T {
	if raw == nil {
		return nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		summary.recordError(resource, err)
		return nil
	}
	return records
}

func (h *TransferHandler) importGuilds(raw json.RawMessage, user *model.User, summary *ImportSummary) {
	for _, record := range decodeRecords[guildExport](raw, "guilds", summary) {
		var guild model.Guild
		err := h.db.Where("name = ?", record.Name).First(&guild).Error
		if err == gorm.ErrRecordNotFound {
			guild = model.Guild{Name: record.Name, CreatedByID: &user.ID}
			err = h.db.Create(&guild).Error
		}
		if err != nil {
			summary.recordError("guilds", fmt.Errorf("%q: %w", record.Name, err))
			continue
		}
		summary.Imported["guilds"]++
	}
}

func (h *TransferHandler) resolveGuild(name string) (*model.Guild, error) {
	var guild model.Guild
	if err := h.db.Where("name = ?", name).First(&guild).Error; err != nil {
		return nil, fmt.Errorf("guild %q not found", name)
	}
	return &guild, nil
}

func (h *TransferHandler) resolveTeam(ref teamRef) (*model.Team, error) {
	guild, err := h.resolveGuild(ref.Guild)
	if err != nil {
		return nil, err
	}
	var team model.Team
	if err := h.db.Where("name = ? AND guild_id = ?", ref.Name, guild.ID).First(&team).Error; err != nil {
		return nil, fmt.Errorf("team %q not found in guild %q", ref.Name, ref.Guild)
	}
	return &team, nil
}

func (h *TransferHandler) importTeams(raw json.RawMessage, user *model.User, summary *ImportSummary) {
	for _, record := range decodeRecords[teamExport](raw, "teams", summary) {
		guild, err := h.resolveGuild(record.Guild)
		if err != nil {
			summary.recordError("teams", fmt.Errorf("%q: %w", record.Name, err))
			continue
		}

		var team model.Team
		err = h.db.Where("name = ? AND guild_id = ?", record.Name, guild.ID).First(&team).Error
		if err == gorm.ErrRecordNotFound {
			team = model.Team{
				Name:        record.Name,
				Description: record.Description,
				GuildID:     guild.ID,
				CreatedByID: &user.ID,
				IsActive:    record.IsActive,
			}
			err = h.db.Create(&team).Error
		} else if err == nil {
			err = h.db.Model(&team).Updates(map[string]interface{}{
				"description": record.Description,
				"is_active":   record.IsActive,
			}).Error
		}
		if err != nil {
			summary.recordError("teams", fmt.Errorf("%q: %w", record.Name, err))
			continue
		}
		summary.Imported["teams"]++
	}
}

func (h *TransferHandler) importScenarios(raw json.RawMessage, summary *ImportSummary) {
	for _, record := range decodeRecords[scenarioExport](raw, "scenarios", summary) {
		var scenario model.Scenario
		err := h.db.Where("name = ?", record.Name).First(&scenario).Error
		if err == gorm.ErrRecordNotFound {
			scenario = model.Scenario{Name: record.Name, IsActive: record.IsActive, Mop: record.Mop}
			err = h.db.Create(&scenario).Error
		} else if err == nil {
			err = h.db.Model(&scenario).Updates(map[string]interface{}{
				"is_active": record.IsActive,
				"mop":       record.Mop,
			}).Error
		}
		if err != nil {
			summary.recordError("scenarios", fmt.Errorf("%q: %w", record.Name, err))
			continue
		}
		summary.Imported["scenarios"]++
	}
}

func (h *TransferHandler) importToons(raw json.RawMessage, summary *ImportSummary) {
	for _, record := range decodeRecords[toonExport](raw, "toons", summary) {
		var toon model.Toon
		err := h.db.Where("username = ?", record.Username).First(&toon).Error
		if err == gorm.ErrRecordNotFound {
			toon = model.Toon{
				Username: record.Username,
				IsMain:   record.IsMain,
				Class:    record.Class,
				Role:     record.Role,
			}
			err = h.db.Create(&toon).Error
		} else if err == nil {
			err = h.db.Model(&toon).Updates(map[string]interface{}{
				"is_main": record.IsMain,
				"class":   record.Class,
				"role":    record.Role,
			}).Error
		}
		if err != nil {
			summary.recordError("toons", fmt.Errorf("%q: %w", record.Username, err))
			continue
		}

		for _, ref := range record.Teams {
			team, err := h.resolveTeam(ref)
			if err != nil {
				summary.recordError("toons", fmt.Errorf("%q: %w", record.Username, err))
				continue
			}
			var link model.ToonTeam
			if h.db.Where("toon_id = ? AND team_id = ?", toon.ID, team.ID).First(&link).Error == gorm.ErrRecordNotFound {
				if err := h.db.Create(&model.ToonTeam{ToonID: toon.ID, TeamID: team.ID}).Error; err != nil {
					summary.recordError("toons", fmt.Errorf("%q: %w", record.Username, err))
				}
			}
		}
		summary.Imported["toons"]++
	}
}

func (h *TransferHandler) importRaids(raw json.RawMessage, summary *ImportSummary) {
	for _, record := range decodeRecords[raidExport](raw, "raids", summary) {
		team, err := h.resolveTeam(record.Team)
		if err != nil {
			summary.recordError("raids", err)
			continue
		}
		var scenario model.Scenario
		if err := h.db.Where("name = ?", record.Scenario).First(&scenario).Error; err != nil {
			summary.recordError("raids", fmt.Errorf("scenario %q not found", record.Scenario))
			continue
		}

		var raid model.Raid
		err = h.db.Where("team_id = ? AND scheduled_at = ?", team.ID, record.ScheduledAt).First(&raid).Error
		if err == gorm.ErrRecordNotFound {
			raid = model.Raid{
				ScheduledAt:     record.ScheduledAt,
				ScenarioID:      scenario.ID,
				TeamID:          team.ID,
				WarcraftlogsURL: record.WarcraftlogsURL,
			}
			err = h.db.Create(&raid).Error
		} else if err == nil {
			err = h.db.Model(&raid).Updates(map[string]interface{}{
				"scenario_id":      scenario.ID,
				"warcraftlogs_url": record.WarcraftlogsURL,
			}).Error
		}
		if err != nil {
			summary.recordError("raids", err)
			continue
		}
		summary.Imported["raids"]++
	}
}

func (h *TransferHandler) importAttendance(raw json.RawMessage, summary *ImportSummary) {
	for _, record := range decodeRecords[attendanceExport](raw, "attendance", summary) {
		team, err := h.resolveTeam(record.Team)
		if err != nil {
			summary.recordError("attendance", err)
			continue
		}
		var raid model.Raid
		if err := h.db.Where("team_id = ? AND scheduled_at = ?", team.ID, record.ScheduledAt).First(&raid).Error; err != nil {
			summary.recordError("attendance", fmt.Errorf("raid at %s not found for team %q", record.ScheduledAt, record.Team.Name))
			continue
		}
		var toon model.Toon
		if err := h.db.Where("username = ?", record.Toon).First(&toon).Error; err != nil {
			summary.recordError("attendance", fmt.Errorf("toon %q not found", record.Toon))
			continue
		}

		var existing model.Attendance
		err = h.db.Where("raid_id = ? AND toon_id = ?", raid.ID, toon.ID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			entry := model.Attendance{
				RaidID:      raid.ID,
				ToonID:      toon.ID,
				Status:      record.Status,
				Notes:       record.Notes,
				BenchedNote: record.BenchedNote,
			}
			err = h.db.Create(&entry).Error
		} else if err == nil {
			err = h.db.Model(&existing).Updates(map[string]interface{}{
				"status":       record.Status,
				"notes":        record.Notes,
				"benched_note": record.BenchedNote,
			}).Error
		}
		if err != nil {
			summary.recordError("attendance", fmt.Errorf("%s/%s: %w", record.Team.Name, record.Toon, err))
			continue
		}
		summary.Imported["attendance"]++
	}
}
