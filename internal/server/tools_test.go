package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"session_open",
		"session_state",
		"session_preview_tone",
		"session_commit_tone",
		"session_rotate",
		"session_set_crop_ratio",
		"session_undo",
		"session_redo",
		"session_reset",
		"session_restore",
		"session_apply",
		"session_cancel",
		"image_analyze",
		"image_palette",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_RequiredSessionID(t *testing.T) {
	// Every session_* tool past session_open operates on an existing session.
	tools := GetToolDefinitions()

	for _, tool := range tools {
		if tool.Name == "session_open" || tool.Name == "image_analyze" || tool.Name == "image_palette" {
			continue
		}

		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"]
			if !ok {
				t.Fatal("InputSchema missing 'required' field")
			}

			requiredList, ok := required.([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasSessionID := false
			for _, r := range requiredList {
				if r == "session_id" {
					hasSessionID = true
					break
				}
			}

			if !hasSessionID {
				t.Error("Tool should require 'session_id' parameter")
			}
		})
	}
}

func TestToolDefinitions_RequiredImage(t *testing.T) {
	// Tools that take a raw image blob require image_base64.
	toolsRequiringImage := []string{"session_open", "image_analyze", "image_palette"}

	tools := GetToolDefinitions()
	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringImage {
		tool, ok := toolMap[name]
		if !ok {
			t.Errorf("Tool %s not found", name)
			continue
		}

		t.Run(name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasImage := false
			for _, r := range required {
				if r == "image_base64" {
					hasImage = true
					break
				}
			}

			if !hasImage {
				t.Error("Tool should require 'image_base64' parameter")
			}
		})
	}
}

func TestToolDefinitions_PaletteCountDefault(t *testing.T) {
	tools := GetToolDefinitions()

	var tool Tool
	for _, tt := range tools {
		if tt.Name == "image_palette" {
			tool = tt
			break
		}
	}

	if tool.Name == "" {
		t.Fatal("image_palette tool not found")
	}

	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}

	countProp, ok := props["count"].(map[string]interface{})
	if !ok {
		t.Fatal("count property should exist and be a map")
	}

	if countProp["default"] != 5 {
		t.Errorf("count default: got %v, want 5", countProp["default"])
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

func TestToolStruct(t *testing.T) {
	tool := Tool{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"param1": map[string]interface{}{
					"type":        "string",
					"description": "A test parameter",
				},
			},
			"required": []string{"param1"},
		},
	}

	if tool.Name != "test_tool" {
		t.Errorf("Name: got %s, want test_tool", tool.Name)
	}
	if tool.Description != "A test tool" {
		t.Errorf("Description: got %s, want 'A test tool'", tool.Description)
	}
	if tool.InputSchema == nil {
		t.Error("InputSchema should not be nil")
	}
}
