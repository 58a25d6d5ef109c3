// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the Frame entity plus request and response types for the API.

# Domain Types

  - Frame: owned configuration record (published and draft config, storage, webhooks)
  - JSON: opaque JSON column, scanned from SQLite strings or Postgres bytes
  - Webhooks: sparse event -> URL map stored as a JSON object

Config, draft config and storage are kept as raw JSON. The shape belongs to
the template that renders the frame, so nothing here validates it.

# Request Types

  - CreateFrameRequest: name, description, template
  - RenameFrameRequest: name
  - UpdateLinkedPageRequest: url (omit to clear)
  - UpdateWebhookRequest: event, url (omit to remove the event)
  - UpdatePreviewRequest: preview (HTML containing a base64 PNG)
  - InteractRequest: button_index, fid

# Response Types

  - FrameListResponse: frames
  - TemplateListResponse: templates
  - ErrorResponse: error, message
*/
package models
