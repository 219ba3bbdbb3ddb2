package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}
}

func TestSwaggerTemplateRenders(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()
	for _, path := range []string{"/api/health", "/api/dashboard", "/api/refresh/{category}"} {
		if !strings.Contains(doc, path) {
			t.Fatalf("expected %s in swagger doc", path)
		}
	}
	if !strings.Contains(doc, "Tredia Investing API") {
		t.Fatal("expected rendered title")
	}
}
