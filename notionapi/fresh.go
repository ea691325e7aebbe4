package notionapi

import (
	"context"
	"fmt"

	"github.com/pblhub/missiond/safeurl"
)

// FreshMediaURL re-fetches a single block to obtain a renewed transient
// media URL. Notion-hosted files are served through signed S3 URLs that
// expire after about an hour; callers invoke this reactively, after a
// dereference of a previously obtained URL was rejected, and retry once
// with the result.
//
// Returns "" (not applicable, no error) when the block is not an image or
// video, or when its reference is an external non-expiring URL. The renewed
// URL is validated against the Notion media host allowlist before being
// returned.
func (c *Client) FreshMediaURL(ctx context.Context, blockID string) (string, error) {
	block, err := c.RetrieveBlock(ctx, blockID)
	if err != nil {
		return "", err
	}

	var media *MediaPayload
	switch block.Type {
	case TypeImage:
		media = block.Image
	case TypeVideo:
		media = block.Video
	default:
		return "", nil
	}

	if media == nil || media.Type != "file" || media.File == nil || media.File.URL == "" {
		// External references don't expire; nothing to refresh.
		return "", nil
	}

	if err := safeurl.ValidateMediaURL(media.File.URL); err != nil {
		return "", fmt.Errorf("fresh URL for block %s: %w", blockID, err)
	}
	return media.File.URL, nil
}
