package storage

import (
	"strings"
	"testing"
)

func TestBuildObjectPath(t *testing.T) {
	tests := []struct {
		name           string
		category       string
		baseName       string
		ext            string
		expectedPrefix string
		expectedSuffix string
	}{
		{"常规路径", "products", "product-12", "png", "products/", "/product-12.png"},
		{"空分类回退misc", "", "banner", "jpg", "misc/", "/banner.jpg"},
		{"扩展名带点", "products", "img", ".JPEG", "products/", "/img.jpeg"},
		{"非法字符被剔除", "prod ucts!", "my photo", "png", "products/", "/my-photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := buildObjectPath(tt.category, tt.baseName, tt.ext)
			if !strings.HasPrefix(result, tt.expectedPrefix) {
				t.Errorf("expected prefix %q, got %q", tt.expectedPrefix, result)
			}
			if !strings.HasSuffix(result, tt.expectedSuffix) {
				t.Errorf("expected suffix %q, got %q", tt.expectedSuffix, result)
			}
		})
	}
}

func TestBuildObjectPathGeneratesBaseName(t *testing.T) {
	result := buildObjectPath("products", "", "png")
	if !strings.HasSuffix(result, ".png") {
		t.Fatalf("expected png suffix, got %q", result)
	}
	parts := strings.Split(result, "/")
	if len(parts) != 5 {
		t.Fatalf("expected category/yyyy/mm/dd/file layout, got %q", result)
	}
	if parts[4] == ".png" {
		t.Fatalf("expected generated base name, got %q", result)
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "bin"},
		{".png", "png"},
		{"JPEG", "jpeg"},
		{"  gif  ", "gif"},
	}
	for _, tt := range tests {
		if got := normalizeExtension(tt.input); got != tt.expected {
			t.Errorf("normalizeExtension(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("My File_01!"); got != "myfile_01" {
		t.Errorf("expected myfile_01, got %q", got)
	}
}
