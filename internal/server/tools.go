package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sessionIDProp is the schema fragment every session-scoped tool shares.
func sessionIDProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session id returned by session_open",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session Lifecycle
		{
			Name:        "session_open",
			Description: "Open an edit session over an encoded image. Returns the session id, source dimensions, and whether a matching autosave restore is available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded source image (PNG, JPEG, GIF, WebP, or QOI)",
					},
				},
				"required": []string{"image_base64"},
			},
		},
		{
			Name:        "session_state",
			Description: "Report a session's lifecycle state, live parameters, history shape, and preview output dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},

		// Live Preview And Commit
		{
			Name:        "session_preview_tone",
			Description: "Update live brightness and/or contrast without touching history. Use during a drag; call session_commit_tone at gesture end.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
					"brightness": map[string]interface{}{
						"type":        "integer",
						"description": "Brightness 0-200, 100 = unchanged. Omit to leave as is.",
					},
					"contrast": map[string]interface{}{
						"type":        "integer",
						"description": "Contrast 0-200, 100 = unchanged. Omit to leave as is.",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_commit_tone",
			Description: "Push the current live tone values into history as a single undo entry, ending a preview gesture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},

		// Discrete Edits
		{
			Name:        "session_rotate",
			Description: "Rotate the image 90 degrees clockwise. Commits to history immediately.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_set_crop_ratio",
			Description: "Set the centered crop ratio. Commits to history immediately.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
					"ratio": map[string]interface{}{
						"type":        "string",
						"description": "One of: original, 1:1, 16:9, 4:3, 3:4, 9:16",
					},
				},
				"required": []string{"session_id", "ratio"},
			},
		},

		// History
		{
			Name:        "session_undo",
			Description: "Step history back one entry. Returns changed=false when already at the oldest state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_redo",
			Description: "Step history forward one entry. Returns changed=false when already at the newest state.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_reset",
			Description: "Restore the default parameters and clear the edit history.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},

		// Autosave
		{
			Name:        "session_restore",
			Description: "Apply the pending autosave restore offer, replacing the live parameters and the whole history stack. Only valid while the offer is up.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},

		// Output
		{
			Name:        "session_apply",
			Description: "Bake the current parameters into the source and return the composed image as base64. The session ends on success.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output encoding",
						"enum":        []string{"png", "jpeg", "qoi"},
						"default":     "png",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "session_cancel",
			Description: "Discard the session without producing output.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProp(),
				},
				"required": []string{"session_id"},
			},
		},

		// Analysis
		{
			Name:        "image_analyze",
			Description: "Send an image to the remote analysis model and return an SEO description, keywords, a generation prompt, and an answer to an optional instruction.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image to analyze",
					},
					"instruction": map[string]interface{}{
						"type":        "string",
						"description": "Optional free-form instruction steering the analysis",
					},
				},
				"required": []string{"image_base64"},
			},
		},
		{
			Name:        "image_palette",
			Description: "Extract the dominant colors of an image locally, without calling the remote model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"image_base64"},
			},
		},
	}
}
