package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// StartListKey builds the object key of a published start list.
func StartListKey(eventID int, id uuid.UUID) string {
	return fmt.Sprintf("start-lists/event-%d/%s.json", eventID, id)
}

// PublishStartList сериализует стартовый лист в JSON и загружает его под новым ключом.
func PublishStartList(ctx context.Context, uploader FileUploader, eventID int, startList interface{}) (*UploadResult, error) {
	body, err := json.Marshal(startList)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal start list for event %d: %w", eventID, err)
	}
	return uploader.Upload(ctx, StartListKey(eventID, uuid.New()), "application/json", bytes.NewReader(body))
}
