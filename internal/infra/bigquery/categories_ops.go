package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
	"google.golang.org/api/iterator"
)

// ListActiveCategoriesWithClient returns the active categories in match
// priority order. The keyword categorizer depends on this order.
func ListActiveCategoriesWithClient(ctx context.Context, client *bigquery.Client, t Tables) ([]domain.Category, error) {
	q := client.Query(`
		SELECT
		  category_id,
		  name,
		  keywords,
		  mccs,
		  icon,
		  color,
		  high_spend_message,
		  saving_message,
		  priority,
		  is_active
		FROM ` + t.ref(categoriesTable) + `
		WHERE is_active = TRUE
		ORDER BY priority, category_id
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActiveCategories: query read: %w", err)
	}

	var categories []domain.Category
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActiveCategories: iter next: %w", err)
		}
		categories = append(categories, r.toDomain())
	}
	return categories, nil
}
