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
		"omr_process_form",
		"omr_process_batch",
		"omr_build_order",
		"omr_layout_regions",
		"omr_annotate_form",
		"omr_crop_mark",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema missing 'properties'")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema should list required arguments")
			}
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required argument %q has no property schema", name)
				}
			}
		})
	}
}

func TestToolDefinitions_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, tool := range GetToolDefinitions() {
		if seen[tool.Name] {
			t.Errorf("Duplicate tool name: %s", tool.Name)
		}
		seen[tool.Name] = true
	}
}
