package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"canteen-backend/internal/models"
)

const MealIndex = "meals"

func IndexMeal(ctx context.Context, es *elasticsearch.Client, index string, meal *models.Meal) error {
	doc, err := json.Marshal(meal)
	if err != nil {
		return fmt.Errorf("index meal: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(doc),
		es.Index.WithDocumentID(fmt.Sprint(meal.ID)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index meal: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index meal: %s", res.Status())
	}
	return nil
}

func DeleteMeal(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(index, fmt.Sprint(id), es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete meal: %s", res.Status())
	}
	return nil
}

func Meals(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Meal, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search meals: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search meals: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search meals: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Meal `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	meals := make([]models.Meal, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		meals[i] = hit.Source
	}
	return r.Hits.Total.Value, meals, nil
}
