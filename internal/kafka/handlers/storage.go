package handlers

import (
	"encoding/json"
	"net/url"

	"vn.io.arda/provisioner/internal/domain"
)

func init() {
	Register("storage-events", "s3:ObjectCreated", handleObjectCreated)
	RegisterDirect("provision-commands", handleRunCommand)
}

// storageEvent is the S3-style bucket notification MinIO and compatible
// gateways publish to Kafka.
type storageEvent struct {
	EventName string `json:"EventName"`
	Records   []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// handleObjectCreated extracts one batch reference per notification record.
// Object keys arrive URL-encoded (spaces as '+') and are unescaped here.
func handleObjectCreated(data []byte) []domain.BatchRef {
	var ev storageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil
	}

	var refs []domain.BatchRef
	for _, rec := range ev.Records {
		key := rec.S3.Object.Key
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if rec.S3.Bucket.Name == "" || key == "" {
			continue
		}
		refs = append(refs, domain.BatchRef{Bucket: rec.S3.Bucket.Name, Key: key})
	}
	return refs
}

// handleRunCommand reprocesses a single object on operator request.
// The whole message is the reference: {"bucket": "...", "key": "..."}.
func handleRunCommand(data []byte) []domain.BatchRef {
	var ref domain.BatchRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil
	}
	if ref.Bucket == "" || ref.Key == "" {
		return nil
	}
	return []domain.BatchRef{ref}
}
