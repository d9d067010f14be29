package notionsync

import (
	"strconv"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/banking-coach/internal/coach"
)

// Property names of the goals database.
const (
	PropTitle    = "Goal"
	PropGoalID   = "Goal ID"
	PropUserID   = "User ID"
	PropTarget   = "Target"
	PropSaved    = "Saved"
	PropProgress = "Progress %"
	PropDeadline = "Deadline"
	PropRisk     = "Risk"
	PropStatus   = "Status"
)

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}

// GoalToNotionProperties converts an evaluated goal to page properties.
func GoalToNotionProperties(userID string, g coach.GoalView) notionapi.Properties {
	deadline := notionapi.Date(g.Deadline.In(time.UTC))
	props := notionapi.Properties{
		PropTitle: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: g.Title}},
			},
		},
		PropGoalID:   richText(strconv.FormatInt(g.ID, 10)),
		PropUserID:   richText(userID),
		PropTarget:   notionapi.NumberProperty{Number: g.Target.InexactFloat64()},
		PropSaved:    notionapi.NumberProperty{Number: g.Saved.InexactFloat64()},
		PropProgress: notionapi.NumberProperty{Number: g.ProgressPercent},
		PropDeadline: notionapi.DateProperty{Date: &notionapi.DateObject{Start: &deadline}},
		PropRisk:     notionapi.SelectProperty{Select: notionapi.Option{Name: string(g.Risk)}},
	}
	if g.Status != "" {
		props[PropStatus] = notionapi.SelectProperty{Select: notionapi.Option{Name: g.Status}}
	}
	return props
}

func plainText(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name]
	if !ok {
		return ""
	}
	if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
		return rt.RichText[0].PlainText
	}
	return ""
}

// extractGoalID returns the goal id stored on a page, 0 when absent.
func extractGoalID(page notionapi.Page) int64 {
	id, err := strconv.ParseInt(plainText(page, PropGoalID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// extractUserID returns the owner stored on a page.
func extractUserID(page notionapi.Page) string {
	return plainText(page, PropUserID)
}
