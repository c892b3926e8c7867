package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/todo_service/internal/config"
	"github.com/Skotchmaster/todo_service/internal/models"
)

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Printf("Elasticsearch error response: %s", body)
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return client, nil
}

// IndexTodo upserts the todo document under its repository id.
func IndexTodo(ctx context.Context, client *elasticsearch.Client, index string, todo *models.Todo) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return err
	}

	res, err := client.Index(
		index,
		bytes.NewReader(data),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(fmt.Sprint(todo.ID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func DeleteTodo(ctx context.Context, client *elasticsearch.Client, index string, id uint) error {
	res, err := client.Delete(
		index,
		fmt.Sprint(id),
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}
