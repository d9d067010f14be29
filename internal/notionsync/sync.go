// Package notionsync mirrors savings goals to a Notion database.
package notionsync

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/coach"
	"github.com/dvloznov/banking-coach/internal/logger"
)

// PageSize is the Notion query page size.
const PageSize = 100

// Result counts what a sync did.
type Result struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// Syncer mirrors the goals of one user at a time.
type Syncer struct {
	goals      appdata.GoalStore
	notion     NotionService
	databaseID string
	now        func() time.Time
}

// NewSyncer creates a goal syncer for a Notion database.
func NewSyncer(goals appdata.GoalStore, notion NotionService, databaseID string) *Syncer {
	return &Syncer{goals: goals, notion: notion, databaseID: databaseID, now: time.Now}
}

// SyncGoals makes the user's pages match their goals: pages for deleted goals
// are archived, existing pages are updated and missing ones created. New page
// ids are stored on the goal. Individual page failures are logged and counted
// without aborting the sync.
func (s *Syncer) SyncGoals(ctx context.Context, userID string, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx).With().Str("user_id", userID).Bool("dry_run", dryRun).Logger()
	var res Result

	goals, err := s.goals.ListGoals(ctx, userID, 0)
	if err != nil {
		return res, fmt.Errorf("SyncGoals: list goals: %w", err)
	}
	views := coach.ViewGoals(goals, civil.DateOf(s.now()))

	pages, err := queryAllNotionPages(ctx, s.notion, s.databaseID)
	if err != nil {
		return res, fmt.Errorf("SyncGoals: %w", err)
	}

	valid := make(map[int64]bool, len(goals))
	for _, g := range goals {
		valid[g.ID] = true
	}

	existing := make(map[int64]string)
	for _, page := range pages {
		if extractUserID(page) != userID {
			continue
		}
		id := extractGoalID(page)
		if id != 0 && valid[id] {
			existing[id] = string(page.ID)
			continue
		}
		if dryRun {
			log.Info().Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := s.notion.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	for i, view := range views {
		pageID := existing[view.ID]
		if pageID == "" {
			pageID = goals[i].NotionPageID
		}
		props := GoalToNotionProperties(userID, view)

		if pageID != "" {
			if dryRun {
				log.Info().Int64("goal_id", view.ID).Msg("[DRY RUN] Would update Notion page")
				res.Updated++
				continue
			}
			if _, err := s.notion.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Int64("goal_id", view.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
				res.Failed++
				continue
			}
			res.Updated++
			continue
		}

		if dryRun {
			log.Info().Int64("goal_id", view.ID).Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}
		page, err := s.notion.CreatePage(ctx, s.databaseID, props)
		if err != nil {
			log.Warn().Err(err).Int64("goal_id", view.ID).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		if err := s.goals.SetGoalNotionPage(ctx, view.ID, string(page.ID)); err != nil {
			log.Warn().Err(err).Int64("goal_id", view.ID).Msg("Failed to store Notion page id")
		}
		res.Created++
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Msg("Goal sync completed")
	return res, nil
}

// queryAllNotionPages follows the query cursor until every page is read.
func queryAllNotionPages(ctx context.Context, notion NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: PageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}
		resp, err := notion.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}
	return all, nil
}
