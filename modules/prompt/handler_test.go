package prompt

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func newTestRouter(secret string) *mux.Router {
	r := mux.NewRouter()
	(&Handler{secret: secret}).RegisterRoutes(r)
	return r
}

func generateBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"userCharacterInputs": testCharacter,
		"stylePairs": []StylePair{
			pair("navy suit", "modern office", "Office"),
		},
		"stylesLimit": 2,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestGenerateEndpoint(t *testing.T) {
	router := newTestRouter("secret-key")

	req := httptest.NewRequest(http.MethodPost, "/api/prompts/generate", generateBody(t))
	req.Header.Set("x-api-key", "secret-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.Success || resp.Count != 2 || len(resp.Prompts) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGenerateEndpointAuth(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		secret string
		want   int
	}{
		{"missing key", "", "secret-key", http.StatusUnauthorized},
		{"wrong key", "nope", "secret-key", http.StatusUnauthorized},
		{"unset secret rejects everything", "anything", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(tc.secret)
			req := httptest.NewRequest(http.MethodPost, "/api/prompts/generate", generateBody(t))
			if tc.key != "" {
				req.Header.Set("x-api-key", tc.key)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGenerateEndpointValidation(t *testing.T) {
	router := newTestRouter("secret-key")

	body := bytes.NewBufferString(`{"stylePairs": [], "stylesLimit": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/prompts/generate", body)
	req.Header.Set("x-api-key", "secret-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
