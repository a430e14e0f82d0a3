package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxMessageLength: 10}))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post(chatPath, ok)
	app.Post(uploadPath, ok)
	app.Post(toolsPath, ok)
	app.Get(chatPath+"/history", ok)
	return app
}

func TestMiddleware(t *testing.T) {
	app := newApp()
	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		want        int
	}{
		{"chat ok", "POST", chatPath, "application/json", `{"message":"hello"}`, 200},
		{"chat missing message", "POST", chatPath, "application/json", `{}`, 400},
		{"chat blank message", "POST", chatPath, "application/json", `{"message":"   "}`, 400},
		{"chat too long", "POST", chatPath, "application/json", `{"message":"01234567890"}`, 400},
		{"chat markup", "POST", chatPath, "application/json", `{"message":"<script>"}`, 400},
		{"chat bad json", "POST", chatPath, "application/json", `{`, 400},
		{"upload json", "POST", uploadPath, "application/json", `{}`, 415},
		{"upload multipart", "POST", uploadPath, "multipart/form-data; boundary=x", "", 200},
		{"tool without name", "POST", toolsPath, "application/json", `{"arguments":{}}`, 400},
		{"tool ok", "POST", toolsPath, "application/json", `{"name":"search_guideline"}`, 200},
		{"get passes", "GET", chatPath + "/history", "", "", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
